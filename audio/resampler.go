// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/beatmix/utils"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// When downsampling, a one-pole low-pass at the destination Nyquist runs ahead
// of the interpolator. Equal rates pass samples through untouched.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // srcRate / dstRate - how many source samples per output sample
	channels int

	passthrough bool

	// Ring buffer holding 4 frames for cubic interpolation
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool

	// Position within the current output stream (in source samples)
	pos float64

	// Chunked reads from source; srcBuf[chunkPos:chunkLen] is unread
	srcBuf   []float32
	chunkPos int
	chunkLen int
	srcEOF   bool
	primed   bool
	eof      bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

// antiAliasCutoff is the fraction of the destination rate kept when downsampling.
const antiAliasCutoff = 0.45

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	srcRate := float64(src.SampleRate())
	ratio := srcRate / float64(dstRate)

	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		// y[n] = a*x[n] + (1-a)*y[n-1], a = 1 - e^(-2*pi*fc/fs)
		fc := antiAliasCutoff * float64(dstRate)
		filterAlpha = float32(1 - math.Exp(-2*math.Pi*fc/srcRate))
	}

	r := &Resampler{
		src:         src,
		srcRate:     srcRate,
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		passthrough: src.SampleRate() == dstRate,
		srcBuf:      make([]float32, 1024*max(channels, 1)),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls one frame from the chunked source buffer into dst.
// It reports false once the source has nothing left.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for r.chunkPos+r.channels > r.chunkLen {
		if r.srcEOF {
			return false, nil
		}

		// Keep any partial frame at the front before refilling
		rest := copy(r.srcBuf, r.srcBuf[r.chunkPos:r.chunkLen])
		end := rest + (len(r.srcBuf)-rest)/r.channels*r.channels
		n, err := r.src.ReadSamples(r.srcBuf[rest:end])
		r.chunkPos, r.chunkLen = 0, rest+n

		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		} else if n == 0 {
			r.srcEOF = true
		}
	}

	copy(dst, r.srcBuf[r.chunkPos:r.chunkPos+r.channels])
	r.chunkPos += r.channels

	return true, nil
}

// lowPass runs the anti-alias filter over a freshly read frame in place.
func (r *Resampler) lowPass(frame []float32) {
	if !r.useFilter {
		return
	}
	for c := range r.channels {
		frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

// fetchNextFrame reads the next frame from source and shifts the frame buffer
func (r *Resampler) fetchNextFrame() error {
	if r.eof {
		return io.EOF
	}

	// Shift frames: [0,1,2,3] -> [1,2,3,?]
	r.frames[0], r.frames[1], r.frames[2], r.frames[3] = r.frames[1], r.frames[2], r.frames[3], r.frames[0]
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]

	ok, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}

	r.hasFrame[3] = ok
	if ok {
		r.lowPass(r.frames[3])
		return nil
	}

	r.eof = true
	if !r.hasFrame[2] {
		return io.EOF
	}
	return nil
}

// prime fills the interpolation window before the first output frame.
// frames[1] holds the first source frame; frames[0] has no predecessor.
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.frames); i++ {
		ok, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}

		if !ok {
			r.eof = true
			if i == 1 {
				return io.EOF
			}
			// Duplicate last valid frame for remaining slots
			for j := i; j < len(r.frames); j++ {
				copy(r.frames[j], r.frames[i-1])
				r.hasFrame[j] = true
			}
			break
		}

		if i == 1 && r.useFilter {
			// Seed the filter with the first frame to avoid a warm-up transient
			copy(r.filterState, r.frames[1])
		}
		r.lowPass(r.frames[i])
		r.hasFrame[i] = true
	}

	copy(r.frames[0], r.frames[1])
	r.hasFrame[0] = false

	return nil
}

// ReadSamples produces dst samples at r.dstRate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.passthrough {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		// pos stays in [0, 1) between frames[1] and frames[2]
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.fetchNextFrame(); err != nil {
				if err == io.EOF {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y0 := r.frames[1][c]
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			y3 := r.frames[2][c]
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.frames[1][c], r.frames[2][c], y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
