// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"
)

// Buffer is a fully decoded block of interleaved PCM.
//
// A Buffer is treated as immutable once produced. Pipeline stages pass the
// pointer along instead of copying Samples.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// NewBuffer validates the format and wraps samples without copying them.
func NewBuffer(samples []float32, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	if len(samples)%channels != 0 {
		return nil, ErrInvalidDstSize
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return DurationOf(b.Frames(), b.SampleRate)
}

// Frame returns the interleaved samples of frame i. The slice aliases the buffer.
func (b *Buffer) Frame(i int) []float32 {
	return b.Samples[i*b.Channels : (i+1)*b.Channels]
}

// Window returns frames [from, to) clamped to the buffer bounds. The slice
// aliases the buffer.
func (b *Buffer) Window(from, to int) []float32 {
	frames := b.Frames()
	from = max(0, min(from, frames))
	to = max(from, min(to, frames))

	return b.Samples[from*b.Channels : to*b.Channels]
}

// Source streams the buffer from its first frame.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

// SameFormat reports whether both buffers share rate and channel count.
func (b *Buffer) SameFormat(o *Buffer) bool {
	return b.SampleRate == o.SampleRate && b.Channels == o.Channels
}

// FramesFor converts a duration to a frame count at rate, rounding to nearest.
func FramesFor(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(rate)))
}

// DurationOf converts a frame count at rate to a duration.
func DurationOf(frames, rate int) time.Duration {
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

type bufferSource struct {
	buf *Buffer
	pos int // in samples
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Samples) {
		return 0, io.EOF
	}

	// Only hand out whole frames
	want := len(dst) - len(dst)%s.buf.Channels
	n := copy(dst[:want], s.buf.Samples[s.pos:])
	s.pos += n

	if s.pos >= len(s.buf.Samples) {
		return n, io.EOF
	}
	return n, nil
}

// Collect drains src into a Buffer, reading bufferSize samples at a time.
// A read error discards everything collected so far.
func Collect(src Source, bufferSize int) (*Buffer, error) {
	return CollectContext(context.Background(), src, bufferSize)
}

// CollectContext is Collect with cancellation checked between reads.
func CollectContext(ctx context.Context, src Source, bufferSize int) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	if bufferSize < channels {
		bufferSize = src.BufSize()
	}
	// Keep reads frame aligned
	bufferSize -= bufferSize % channels
	if bufferSize == 0 {
		bufferSize = 4096 * channels
	}

	samples := make([]float32, 0, src.SampleRate()*channels)
	buf := make([]float32, bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect samples: %w", err)
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("collect samples: %w", err)
		}

		if n == 0 {
			// Some decoders signal exhaustion with (0, nil)
			break
		}
	}

	// Drop a trailing partial frame rather than misalign every channel
	samples = samples[:len(samples)-len(samples)%channels]

	return &Buffer{Samples: samples, SampleRate: src.SampleRate(), Channels: channels}, nil
}
