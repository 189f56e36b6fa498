// SPDX-License-Identifier: EPL-2.0

package session

import (
	"errors"

	"github.com/ik5/beatmix/crossfade"
)

var (
	ErrNotStarted        = errors.New("session not started")
	ErrAlreadyStarted    = errors.New("session already started")
	ErrPaused            = errors.New("session paused")
	ErrStopped           = errors.New("session stopped")
	ErrTrackNotFound     = errors.New("track not found")
	ErrTrackBusy         = errors.New("track is playing")
	ErrInvalidCrossfade  = errors.New("invalid crossfade length")
	ErrInvalidConfig     = errors.New("invalid session config")
	ErrMissingDependency = errors.New("session needs a fetcher, a decoder and an analyzer")

	// ErrUnknownCurve is returned by SetCurveKind.
	ErrUnknownCurve = crossfade.ErrUnknownCurve
)
