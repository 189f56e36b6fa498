// SPDX-License-Identifier: EPL-2.0

package transition

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/beatmix/crossfade"
)

type Config struct {
	MaxCrossfade      time.Duration `yaml:"max_crossfade"`
	FallbackCrossfade time.Duration `yaml:"fallback_crossfade"`
	MinCrossfade      time.Duration `yaml:"min_crossfade"`
	// BPMTolerance is the largest |out/in - 1| still considered beat-matchable.
	BPMTolerance float64 `yaml:"bpm_tolerance"`
	// IntroWindow caps how much of the incoming track may sit under the overlap.
	IntroWindow time.Duration  `yaml:"intro_window"`
	Curve       crossfade.Kind `yaml:"curve"`
}

func DefaultConfig() Config {
	return Config{
		MaxCrossfade:      8 * time.Second,
		FallbackCrossfade: 4 * time.Second,
		MinCrossfade:      500 * time.Millisecond,
		BPMTolerance:      0.06,
		IntroWindow:       30 * time.Second,
		Curve:             crossfade.EqualPower,
	}
}

var ErrInvalidConfig = errors.New("invalid transition config")

func (c Config) Validate() error {
	switch {
	case c.MinCrossfade < 0:
		return fmt.Errorf("%w: negative min crossfade", ErrInvalidConfig)
	case c.MaxCrossfade < c.MinCrossfade || c.FallbackCrossfade < c.MinCrossfade:
		return fmt.Errorf("%w: crossfades must not be shorter than %v", ErrInvalidConfig, c.MinCrossfade)
	case c.MaxCrossfade <= 0 || c.FallbackCrossfade <= 0:
		return fmt.Errorf("%w: crossfades must be positive", ErrInvalidConfig)
	case c.BPMTolerance < 0 || c.BPMTolerance >= 1:
		return fmt.Errorf("%w: bpm tolerance %.3f outside [0, 1)", ErrInvalidConfig, c.BPMTolerance)
	case c.IntroWindow <= 0:
		return fmt.Errorf("%w: intro window must be positive", ErrInvalidConfig)
	case c.Curve != crossfade.EqualPower && c.Curve != crossfade.Linear:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, crossfade.ErrUnknownCurve)
	}
	return nil
}
