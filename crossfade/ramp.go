// SPDX-License-Identifier: EPL-2.0

package crossfade

import "github.com/ik5/beatmix/audio"

// Ramp is a forced linear fade that drives the outgoing gain to 0 and the
// incoming gain to 1 from wherever they currently are. Each frame moves a
// gain by at most 1/frames.
type Ramp struct {
	fromOut, fromIn float64
	frames, pos     int
}

func NewRamp(fromOut, fromIn float64, frames int) (*Ramp, error) {
	if frames <= 0 {
		return nil, ErrInvalidRamp
	}
	return &Ramp{fromOut: fromOut, fromIn: fromIn, frames: frames}, nil
}

// Gains reports the gains of the next frame without advancing.
func (r *Ramp) Gains() (out, in float64) {
	if r.pos >= r.frames {
		return 0, 1
	}
	p := float64(r.pos+1) / float64(r.frames)
	return r.fromOut * (1 - p), r.fromIn + (1-r.fromIn)*p
}

func (r *Ramp) Done() bool { return r.pos >= r.frames }

// Remaining is the number of frames left before the ramp completes.
func (r *Ramp) Remaining() int { return max(0, r.frames-r.pos) }

// Apply mixes as many frames as fit in dst and the ramp into dst, advancing
// the ramp. Missing frames of out or in are silence.
func (r *Ramp) Apply(dst, out, in []float32, channels int) int {
	if channels <= 0 {
		return 0
	}

	frames := min(len(dst)/channels, r.Remaining())
	for f := range frames {
		gOut, gIn := r.Gains()
		r.pos++
		for c := range channels {
			i := f*channels + c
			dst[i] = audio.Clamp(float32(gOut)*sample(out, i) + float32(gIn)*sample(in, i))
		}
	}

	return frames
}
