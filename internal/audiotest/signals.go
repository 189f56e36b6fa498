// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"
	"time"
)

const (
	clickFrequency = 1000.0
	clickDecay     = 15 * time.Millisecond
	clickLength    = 60 * time.Millisecond
	clickAmplitude = 0.8
	// Low hum under the clicks keeps the signal from being pure silence
	bedAmplitude = 0.01
	bedFrequency = 110.0
)

// Frames converts a duration to a frame count at rate.
func Frames(d time.Duration, rate int) int {
	return int(math.Round(d.Seconds() * float64(rate)))
}

// Clicks renders a metronome: a decaying 1 kHz burst on every beat of bpm
// starting at offset, over a quiet hum. Samples are interleaved with the same
// value on every channel.
func Clicks(rate, channels int, dur time.Duration, bpm float64, offset time.Duration) []float32 {
	frames := Frames(dur, rate)
	out := make([]float32, frames*channels)

	period := 60.0 / bpm
	start := offset.Seconds()
	length := clickLength.Seconds()
	decay := clickDecay.Seconds()

	for f := range frames {
		t := float64(f) / float64(rate)
		v := bedAmplitude * math.Sin(2*math.Pi*bedFrequency*t)

		if t >= start {
			since := math.Mod(t-start, period)
			if since < length {
				env := math.Exp(-since / decay)
				v += clickAmplitude * env * math.Sin(2*math.Pi*clickFrequency*since)
			}
		}

		for c := range channels {
			out[f*channels+c] = float32(v)
		}
	}

	return out
}

// Beats lists the click times Clicks produces for the same arguments.
func Beats(dur time.Duration, bpm float64, offset time.Duration) []time.Duration {
	period := time.Duration(60.0 / bpm * float64(time.Second))
	var beats []time.Duration
	for t := offset; t < dur; t += period {
		beats = append(beats, t)
	}
	return beats
}

// Tone renders an interleaved sine at amplitude amp.
func Tone(rate, channels int, dur time.Duration, freq, amp float64) []float32 {
	frames := Frames(dur, rate)
	out := make([]float32, frames*channels)
	for f := range frames {
		v := float32(amp * math.Sin(2*math.Pi*freq*float64(f)/float64(rate)))
		for c := range channels {
			out[f*channels+c] = v
		}
	}
	return out
}

// Constant renders frames frames of value on every channel.
func Constant(frames, channels int, value float32) []float32 {
	out := make([]float32, frames*channels)
	for i := range out {
		out[i] = value
	}
	return out
}
