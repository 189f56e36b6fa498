// SPDX-License-Identifier: EPL-2.0

package beat

import (
	"errors"
	"fmt"
	"time"
)

// Config holds every threshold of the estimator.
type Config struct {
	// Window and Hop size the short-time energy frames.
	Window time.Duration `yaml:"window"`
	Hop    time.Duration `yaml:"hop"`

	// MinBPM and MaxBPM bound reported tempos after harmonic folding.
	MinBPM float64 `yaml:"min_bpm"`
	MaxBPM float64 `yaml:"max_bpm"`
	// SearchMinBPM and SearchMaxBPM bound the autocorrelation lag search.
	SearchMinBPM float64 `yaml:"search_min_bpm"`
	SearchMaxBPM float64 `yaml:"search_max_bpm"`

	// An onset must exceed ThresholdScale times the mean flux within
	// ±ThresholdSpan, plus ThresholdFloor.
	ThresholdScale float64       `yaml:"threshold_scale"`
	ThresholdSpan  time.Duration `yaml:"threshold_span"`
	ThresholdFloor float64       `yaml:"threshold_floor"`
	MinOnsetGap    time.Duration `yaml:"min_onset_gap"`

	// OctaveAdvantage is how much better the grid of a related tempo (an
	// octave, a third or a 2:3 ratio of the dominant lag) must fit the onsets
	// before it replaces the dominant tempo.
	OctaveAdvantage float64 `yaml:"octave_advantage"`

	OnsetTolerance      time.Duration `yaml:"onset_tolerance"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	MinOnsets           int           `yaml:"min_onsets"`

	// AnalysisWindow is the length of the head and tail windows Analyze uses.
	AnalysisWindow time.Duration `yaml:"analysis_window"`
}

func DefaultConfig() Config {
	return Config{
		Window:              20 * time.Millisecond,
		Hop:                 10 * time.Millisecond,
		MinBPM:              60,
		MaxBPM:              180,
		SearchMinBPM:        40,
		SearchMaxBPM:        240,
		ThresholdScale:      1.5,
		ThresholdSpan:       100 * time.Millisecond,
		ThresholdFloor:      0.05,
		MinOnsetGap:         80 * time.Millisecond,
		OctaveAdvantage:     1.2,
		OnsetTolerance:      50 * time.Millisecond,
		ConfidenceThreshold: 0.5,
		MinOnsets:           4,
		AnalysisWindow:      30 * time.Second,
	}
}

var ErrInvalidConfig = errors.New("invalid beat config")

func (c Config) Validate() error {
	switch {
	case c.Window <= 0 || c.Hop <= 0:
		return fmt.Errorf("%w: window and hop must be positive", ErrInvalidConfig)
	case c.Hop > c.Window:
		return fmt.Errorf("%w: hop %v longer than window %v", ErrInvalidConfig, c.Hop, c.Window)
	case c.MinBPM <= 0 || c.MaxBPM < 2*c.MinBPM:
		// Octave folding needs at least one full octave to land in
		return fmt.Errorf("%w: bpm range %.0f..%.0f must span an octave", ErrInvalidConfig, c.MinBPM, c.MaxBPM)
	case c.SearchMinBPM <= 0 || c.SearchMaxBPM <= c.SearchMinBPM:
		return fmt.Errorf("%w: bad search range %.0f..%.0f", ErrInvalidConfig, c.SearchMinBPM, c.SearchMaxBPM)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence threshold %.2f outside 0..1", ErrInvalidConfig, c.ConfidenceThreshold)
	case c.OctaveAdvantage < 1:
		return fmt.Errorf("%w: octave advantage below 1", ErrInvalidConfig)
	case c.MinOnsets < 2:
		return fmt.Errorf("%w: need at least 2 onsets", ErrInvalidConfig)
	case c.AnalysisWindow <= 0:
		return fmt.Errorf("%w: analysis window must be positive", ErrInvalidConfig)
	}
	return nil
}
