// SPDX-License-Identifier: EPL-2.0

package crossfade

import (
	"fmt"

	"github.com/ik5/beatmix/audio"
)

// Blend mixes frames [start, start+len(dst)/channels) of a total-frame
// overlap window into dst. out and in hold the matching frames of each track;
// frames they lack are treated as silence. It returns the frames written.
func Blend(dst, out, in []float32, channels int, kind Kind, start, total int) int {
	if channels <= 0 {
		return 0
	}

	frames := len(dst) / channels
	for f := range frames {
		gOut, gIn := Gains(kind, Progress(start+f, total))
		for c := range channels {
			i := f*channels + c
			dst[i] = audio.Clamp(float32(gOut)*sample(out, i) + float32(gIn)*sample(in, i))
		}
	}

	return frames
}

func sample(s []float32, i int) float32 {
	if i < len(s) {
		return s[i]
	}
	return 0
}

// Render blends two whole segments into a new buffer as long as the longer
// one. The first output frame is out's first frame, the last is in's last.
func Render(out, in *audio.Buffer, kind Kind) (*audio.Buffer, error) {
	if !out.SameFormat(in) {
		return nil, fmt.Errorf("render %d Hz/%d ch with %d Hz/%d ch: %w",
			out.SampleRate, out.Channels, in.SampleRate, in.Channels, audio.ErrBufferMismatch)
	}

	total := max(out.Frames(), in.Frames())
	dst := make([]float32, total*out.Channels)
	Blend(dst, out.Samples, in.Samples, out.Channels, kind, 0, total)

	return &audio.Buffer{Samples: dst, SampleRate: out.SampleRate, Channels: out.Channels}, nil
}
