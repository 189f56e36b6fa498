// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"
	"time"
)

type Config struct {
	// Lookahead is how long before the earliest possible overlap the
	// session asks the planner for a transition.
	Lookahead time.Duration `yaml:"lookahead"`
	// Prefetch is how many queued tracks beyond the current one are fetched,
	// decoded and analyzed in the background.
	Prefetch int `yaml:"prefetch"`
	// SkipFade bounds the forced fade of Skip.
	SkipFade      time.Duration `yaml:"skip_fade"`
	FrameDuration time.Duration `yaml:"frame_duration"`
	// WaitForAnalysis makes reads block at the lookahead point until both
	// tracks are analyzed instead of planning with what is ready. Offline
	// rendering wants this, live playback does not.
	WaitForAnalysis bool `yaml:"wait_for_analysis"`
}

func DefaultConfig() Config {
	return Config{
		Lookahead:     10 * time.Second,
		Prefetch:      1,
		SkipFade:      500 * time.Millisecond,
		FrameDuration: 20 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Lookahead < 0:
		return fmt.Errorf("%w: negative lookahead", ErrInvalidConfig)
	case c.Prefetch < 1:
		return fmt.Errorf("%w: prefetch must be at least 1", ErrInvalidConfig)
	case c.SkipFade <= 0:
		return fmt.Errorf("%w: skip fade must be positive", ErrInvalidConfig)
	case c.FrameDuration <= 0:
		return fmt.Errorf("%w: frame duration must be positive", ErrInvalidConfig)
	}
	return nil
}
