// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/utils"
)

// go-mp3 always produces 16-bit little-endian stereo
const (
	outChannels   = 2
	bytesPerFrame = outChannels * 2
)

// maxEmptyReads bounds how often a (0, nil) read is retried before the
// stream counts as finished.
const maxEmptyReads = 8

// mp3Reader is the part of gomp3.Decoder used here, so tests can fake it
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	carry      int // bytes of an incomplete frame kept at the front of buf
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // samples, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / outChannels
	if frames == 0 {
		return 0, nil
	}

	need := frames * bytesPerFrame
	if cap(s.buf) < need {
		grown := make([]byte, need)
		copy(grown, s.buf[:s.carry])
		s.buf = grown
	}
	s.buf = s.buf[:need]

	have := s.carry
	var err error
	for empty := 0; have < bytesPerFrame && empty < maxEmptyReads; {
		var n int
		n, err = s.dec.Read(s.buf[have:])
		have += n
		if err != nil {
			break
		}
		if n == 0 {
			empty++
		}
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}

	aligned := have - have%bytesPerFrame
	for i := range aligned / 2 {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.IntToFloat32(int(v), 16)
	}
	s.carry = copy(s.buf, s.buf[aligned:have])

	if err != nil || aligned == 0 {
		return aligned / 2, io.EOF
	}
	return aligned / 2, nil
}

// Decoder reads MPEG-1/2 Layer III through go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
