// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/formats/intpcm"
	"github.com/ik5/beatmix/internal/memfile"
)

const formatPCM = 1

// Decoder reads RIFF/WAVE integer PCM at 16, 24 or 32 bit.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs to seek across chunks
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}
	closeSizes(data)

	dec := gowav.NewDecoder(memfile.New(data))
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedWavFormat, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		// 8 bit WAV is unsigned, everything we convert is signed
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return intpcm.NewSource(dec, int(dec.SampleRate), int(dec.NumChans), bitDepth), nil
}

// closeSizes replaces RIFF and data chunk sizes that are open ended or run
// past the end of data with the bytes actually present, as a streamed file
// is read until EOF.
func closeSizes(data []byte) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return
	}
	if size := binary.LittleEndian.Uint32(data[4:8]); uint64(size) > uint64(len(data)-8) {
		binary.LittleEndian.PutUint32(data[4:8], uint32(len(data)-8))
	}

	for pos := 12; pos+8 <= len(data); {
		size := uint64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := uint64(len(data) - pos - 8)
		if string(data[pos:pos+4]) == "data" {
			if size > body {
				binary.LittleEndian.PutUint32(data[pos+4:pos+8], uint32(body))
			}
			return
		}
		if size > body {
			return
		}
		pos += 8 + int(size) + int(size&1)
	}
}
