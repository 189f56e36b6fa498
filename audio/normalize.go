// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// silenceFloorDBFS is the level below which Normalize leaves audio alone.
const silenceFloorDBFS = -90.0

// RMSDBFS returns the RMS level of samples in dBFS, or -Inf for silence.
func RMSDBFS(samples []float32) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}

	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

// Normalize returns a copy of buf with gain applied so its RMS level lands on
// targetDBFS. Samples are hard-clamped to [-1, 1]. Silent input is returned
// unchanged.
func Normalize(buf *Buffer, targetDBFS float64) *Buffer {
	level := RMSDBFS(buf.Samples)
	if math.IsInf(level, -1) || level < silenceFloorDBFS {
		return buf
	}

	gain := float32(math.Pow(10, (targetDBFS-level)/20))
	out := make([]float32, len(buf.Samples))
	for i, s := range buf.Samples {
		out[i] = Clamp(s * gain)
	}

	return &Buffer{Samples: out, SampleRate: buf.SampleRate, Channels: buf.Channels}
}

// Clamp limits a sample to the valid range [-1, 1]. NaN maps to silence.
func Clamp(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	case x != x:
		return 0
	}
	return x
}
