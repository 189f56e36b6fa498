// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/internal/memfile"
	"github.com/ik5/beatmix/utils"
)

// encodeChunkFrames bounds the IntBuffer handed to the encoder per write.
const encodeChunkFrames = 8192

// Encode writes buf as an integer PCM WAV file at bitDepth (16, 24 or 32).
// The header sizes are patched on completion, hence the io.WriteSeeker.
func Encode(w io.WriteSeeker, buf *audio.Buffer, bitDepth int) error {
	if buf == nil {
		return ErrNilBuffer
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	enc := gowav.NewEncoder(w, buf.SampleRate, bitDepth, buf.Channels, formatPCM)

	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		SourceBitDepth: bitDepth,
	}
	chunk := encodeChunkFrames * buf.Channels
	data := make([]int, min(chunk, len(buf.Samples)))

	if len(buf.Samples) == 0 {
		// Still emit the header and an empty data chunk
		ints.Data = data
		if err := enc.Write(ints); err != nil {
			return fmt.Errorf("encode wav: %w", err)
		}
	}

	for start := 0; start < len(buf.Samples); start += chunk {
		end := min(start+chunk, len(buf.Samples))
		ints.Data = data[:end-start]
		for i, s := range buf.Samples[start:end] {
			ints.Data[i] = utils.Float32ToInt(s, bitDepth)
		}
		if err := enc.Write(ints); err != nil {
			return fmt.Errorf("encode wav: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into memory at 16 bit.
func EncodeBytes(buf *audio.Buffer) ([]byte, error) {
	f := &memfile.File{}
	if err := Encode(f, buf, 16); err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}
