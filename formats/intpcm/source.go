// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio style integer PCM decoders to audio.Source.
package intpcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/beatmix/utils"
)

// Reader is the slice of go-audio's wav and aiff decoders we depend on.
// PCMBuffer fills buf.Data and returns the number of samples written; zero
// means the stream is over.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer samples to float32 and only ever hands out whole
// frames, even when the decoder splits one across reads.
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	bitDepth   int

	ints    *goaudio.IntBuffer
	data    []int
	pending []int
	eof     bool
}

func NewSource(dec Reader, sampleRate, channels, bitDepth int) *Source {
	return &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		ints: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }
func (s *Source) BufSize() int {
	if cap(s.data) > 0 {
		return cap(s.data)
	}
	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}
	if s.eof && len(s.pending) < s.channels {
		return 0, io.EOF
	}

	if cap(s.data) < want {
		s.data = make([]int, want)
	}
	data := s.data[:want]
	have := copy(data, s.pending)
	s.pending = s.pending[:0]

	for have < s.channels && !s.eof {
		s.ints.Data = data[have:]
		n, err := s.dec.PCMBuffer(s.ints)
		if err != nil {
			return 0, fmt.Errorf("read pcm: %w", err)
		}
		if n == 0 {
			s.eof = true
		}
		have += n
	}

	aligned := have - have%s.channels
	for i := range aligned {
		dst[i] = utils.IntToFloat32(data[i], s.bitDepth)
	}
	s.pending = append(s.pending, data[aligned:have]...)

	if s.eof {
		return aligned, io.EOF
	}
	return aligned, nil
}
