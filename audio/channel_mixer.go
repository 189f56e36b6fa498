// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts a Source to a different channel count.
//
// Downmixing averages every source channel into the target channels they
// fold onto (channel c lands on c % target), upmixing repeats source
// channels cyclically. Mono output is the plain average of all channels.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

// NewMonoMixer averages all channels of src into one.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }
func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if m.channels <= 0 {
		return 0, ErrInvalidChannels
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	maxFrames := len(dst) / m.channels
	samplesNeeded := maxFrames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}

	frames := n / in
	out := m.channels

	switch {
	case in == 2 && out == 1:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	case in == 1 && out == 2:
		for f := range frames {
			v := m.tmp[f]
			dst[f<<1] = v
			dst[f<<1+1] = v
		}
	case out == 1:
		inv := float32(1.0) / float32(in)
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	case in < out:
		for f := range frames {
			for c := range out {
				dst[f*out+c] = m.tmp[f*in+c%in]
			}
		}
	default:
		m.fold(dst, frames, in)
	}

	return frames * out, err
}

// fold averages in > out channels onto out channels.
func (m *ChannelMixer) fold(dst []float32, frames, in int) {
	out := m.channels
	for f := range frames {
		row := dst[f*out : (f+1)*out]
		clear(row)
		for c := range in {
			row[c%out] += m.tmp[f*in+c]
		}
		for c := range out {
			// Number of source channels landing on c
			count := in / out
			if c < in%out {
				count++
			}
			row[c] /= float32(count)
		}
	}
}
