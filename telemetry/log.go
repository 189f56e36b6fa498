// SPDX-License-Identifier: EPL-2.0

package telemetry

import (
	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/session"
)

// LogSink writes every event as one structured log line.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "events").Logger()}
}

func (l *LogSink) Emit(ev session.Event) {
	var e *zerolog.Event
	switch ev.Type {
	case session.EventTrackSkippedDecodeError, session.EventAnalysisUnreliable:
		e = l.logger.Warn()
	default:
		e = l.logger.Info()
	}

	e = e.Str("event", string(ev.Type)).Str("session", ev.SessionID)
	if ev.TrackID != "" {
		e = e.Str("track", ev.TrackID)
	}
	if ev.Duration > 0 {
		e = e.Dur("duration", ev.Duration)
	}
	if p := ev.Plan; p != nil {
		e = e.Str("outgoing", p.OutgoingID).
			Dur("start", p.Start).
			Dur("overlap", p.Duration).
			Bool("beat_matched", p.BeatMatched).
			Str("reason", string(p.Reason))
	}
	if ev.Reason != "" {
		e = e.Str("reason", ev.Reason)
	}
	if ev.Err != nil {
		e = e.Err(ev.Err)
	}
	e.Msg("session event")
}
