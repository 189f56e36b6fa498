// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
)

// Convert drains src into a Buffer at the given sample rate and channel count.
//
// The pipeline is:
//  1. Downmix first when the channel count shrinks, so the resampler does less work
//  2. Resample to rate using cubic interpolation
//  3. Upmix when the channel count grows
//  4. Collect everything, checking ctx between reads
//
// Parameters:
//   - src: the audio source; Convert does not close it
//   - rate: target sample rate in Hz (e.g. 44100)
//   - channels: target channel count (e.g. 2)
//   - bufferSize: samples per read; values below the channel count fall back
//     to src.BufSize()
//
// A read failure anywhere in the pipeline returns a nil Buffer.
func Convert(ctx context.Context, src Source, rate, channels, bufferSize int) (*Buffer, error) {
	if rate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 || src.Channels() <= 0 {
		return nil, ErrInvalidChannels
	}

	var pipeline Source = src
	if channels < src.Channels() {
		pipeline = NewChannelMixer(pipeline, channels)
	}
	if pipeline.SampleRate() != rate {
		pipeline = NewResampler(pipeline, rate)
	}
	if channels > pipeline.Channels() {
		pipeline = NewChannelMixer(pipeline, channels)
	}

	buf, err := CollectContext(ctx, pipeline, bufferSize)
	if err != nil {
		return nil, fmt.Errorf("convert to %d Hz/%d ch: %w", rate, channels, err)
	}

	return buf, nil
}
