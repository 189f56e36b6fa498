// SPDX-License-Identifier: EPL-2.0

package session

import (
	"time"

	"github.com/ik5/beatmix/transition"
)

type EventType string

const (
	EventTrackStarted            EventType = "track_started"
	EventTransitionStarted       EventType = "transition_started"
	EventTransitionCompleted     EventType = "transition_completed"
	EventAnalysisUnreliable      EventType = "analysis_unreliable"
	EventTrackSkippedDecodeError EventType = "track_skipped_decode_error"
	EventSessionStopped          EventType = "session_stopped"
)

// Event is a side-channel notification about playback.
type Event struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"session_id"`
	Time      time.Time        `json:"time"`
	TrackID   string           `json:"track_id,omitempty"`
	Duration  time.Duration    `json:"duration,omitempty"`
	Plan      *transition.Plan `json:"plan,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Err       error            `json:"-"`
	Error     string           `json:"error,omitempty"`
}

// EventSink receives session events. Emit is called with the session lock
// held: it must not block and must not call back into the session.
type EventSink interface {
	Emit(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(ev Event) { f(ev) }

type nopSink struct{}

func (nopSink) Emit(Event) {}
