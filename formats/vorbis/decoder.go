// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/beatmix/audio"
)

// oggReader is the part of oggvorbis.Reader used here, so tests can fake it.
// Read fills interleaved float32 samples and returns how many it wrote.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	// oggvorbis decodes straight into dst, whole frames only
	n, err := s.dec.Read(dst[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("decode vorbis: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	return n, err
}

// Decoder reads Ogg Vorbis through oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
