// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic signal generators shared by package tests.
//
// Nothing here imports the audio package so that audio's own tests can use it.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by sources configured to fail.
var ErrInjected = errors.New("audiotest: injected read failure")

// MockSource generates interleaved samples from a waveform function.
// It satisfies audio.Source.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to generate
	generated  int // frames generated so far
	failAt     int // frame index at which ReadSamples errors, -1 disables
	waveform   func(frame int, channel int) float32
}

// NewMockSource creates a source producing frames frames of waveform.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		failAt:     -1,
		waveform:   waveform,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSliceSource replays interleaved samples.
func NewSliceSource(sampleRate, channels int, samples []float32) *MockSource {
	return NewMockSource(sampleRate, channels, len(samples)/channels, func(frame int, channel int) float32 {
		return samples[frame*channels+channel]
	})
}

// FailAt makes ReadSamples return ErrInjected once frame is reached.
func (m *MockSource) FailAt(frame int) *MockSource {
	m.failAt = frame
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds the source to its first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAt >= 0 && m.generated >= m.failAt {
		return 0, ErrInjected
	}
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	count := min(len(dst)/m.channels, m.frames-m.generated)
	if m.failAt >= 0 {
		count = min(count, m.failAt-m.generated)
	}

	for f := range count {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += count

	if m.generated >= m.frames {
		return count * m.channels, io.EOF
	}
	return count * m.channels, nil
}
