// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"fmt"
)

// Config fixes the canonical PCM format every decoded track is converted to.
type Config struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	// NormalizeDBFS is the RMS loudness target. Zero disables normalization.
	NormalizeDBFS float64 `yaml:"normalize_dbfs"`
	// BufferSize is the number of samples pulled per read.
	BufferSize int `yaml:"buffer_size"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		Channels:      2,
		NormalizeDBFS: -14,
		BufferSize:    4096,
	}
}

const maxChannels = 8

var ErrInvalidConfig = errors.New("invalid decode config")

func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d outside 8000..192000", ErrInvalidConfig, c.SampleRate)
	case c.Channels < 1 || c.Channels > maxChannels:
		return fmt.Errorf("%w: channels %d outside 1..%d", ErrInvalidConfig, c.Channels, maxChannels)
	case c.NormalizeDBFS > 0:
		return fmt.Errorf("%w: normalize target %.1f dBFS above full scale", ErrInvalidConfig, c.NormalizeDBFS)
	case c.BufferSize < 0:
		return fmt.Errorf("%w: negative buffer size", ErrInvalidConfig)
	}
	return nil
}
