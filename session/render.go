// SPDX-License-Identifier: EPL-2.0

package session

import (
	"io"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/crossfade"
	"github.com/ik5/beatmix/transition"
)

func (s *Session) SampleRate() int { return s.rate }
func (s *Session) Channels() int   { return s.channels }
func (s *Session) BufSize() int    { return s.frameLen }

// ReadSamples fills dst with the next interleaved samples of the mix. It
// blocks only when the next track is still decoding and nothing else can be
// played. It returns io.EOF once the session has stopped, ErrPaused while
// paused and ErrNotStarted before Start.
func (s *Session) ReadSamples(dst []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		return 0, ErrNotStarted
	case Paused:
		return 0, ErrPaused
	case Stopped:
		return 0, io.EOF
	}

	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	want := len(dst) / s.channels
	written := 0
	for written < want && s.active() {
		n, err := s.render(dst[written*s.channels : want*s.channels])
		if err != nil {
			s.stopLocked("context done")
			break
		}
		written += n
	}

	switch {
	case s.state == Stopped:
		return written * s.channels, io.EOF
	case written == 0 && s.state == Paused:
		return 0, ErrPaused
	}
	return written * s.channels, nil
}

// ReadFrame returns the next FrameDuration of output. The last frame of a
// session is padded with silence.
func (s *Session) ReadFrame() ([]float32, error) {
	frame := make([]float32, s.frameLen)

	n, err := s.ReadSamples(frame)
	if n == 0 && err != nil {
		return nil, err
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return frame, nil
}

func (s *Session) active() bool {
	return s.state == Playing || s.state == Transitioning
}

// render produces up to len(dst) samples and returns the frames written. It
// may write nothing when it only changed tracks. Caller holds s.mu, which
// render may release while waiting on a decode.
func (s *Session) render(dst []float32) (int, error) {
	if s.current == nil {
		return 0, s.advance()
	}
	if err := s.maybePlan(); err != nil {
		return 0, err
	}
	if !s.active() || s.current == nil {
		return 0, nil
	}

	if s.inOverlap() {
		return s.renderOverlap(dst), nil
	}

	cur := s.current.buf
	total := cur.Frames()
	frames := len(dst) / s.channels

	if s.fade != nil {
		// Skip with nothing to crossfade into
		n := s.fade.Apply(dst, cur.Window(s.cursor, s.cursor+frames), nil, s.channels)
		s.cursor += n
		if s.fade.Done() || s.cursor >= total {
			s.finishCurrent()
		}
		return n, nil
	}

	limit := total
	if s.plan != nil {
		limit = s.planAt
	}

	n := min(frames, limit-s.cursor)
	if n <= 0 {
		s.finishCurrent()
		return 0, nil
	}

	copy(dst, cur.Window(s.cursor, s.cursor+n))
	s.cursor += n
	return n, nil
}

func (s *Session) renderOverlap(dst []float32) int {
	if s.state != Transitioning {
		s.state = Transitioning
		s.emit(Event{Type: EventTransitionStarted, TrackID: s.next.id, Plan: s.plan})
		s.emit(Event{Type: EventTrackStarted, TrackID: s.next.id, Duration: s.next.buf.Duration()})
	}

	ch := s.channels
	out, in := s.current.buf, s.next.buf
	k := s.cursor - s.planAt
	frames := len(dst) / ch

	var n int
	if s.fade != nil {
		n = min(frames, s.fade.Remaining())
		n = s.fade.Apply(dst[:n*ch], out.Window(s.cursor, s.cursor+n), in.Window(k, k+n), ch)
	} else {
		n = min(frames, s.planLen-k)
		crossfade.Blend(dst[:n*ch], out.Window(s.cursor, s.cursor+n), in.Window(k, k+n), ch, s.plan.Curve, k, s.planLen)
	}

	s.cursor += n
	k += n

	if s.fade != nil && s.fade.Done() || s.fade == nil && k >= s.planLen {
		s.completeTransition(k)
	}
	return n
}

// completeTransition makes the incoming track current at frame k.
func (s *Session) completeTransition(k int) {
	s.emit(Event{Type: EventTransitionCompleted, TrackID: s.next.id, Plan: s.plan})
	s.logger.Debug().Str("track", s.next.id).Int("frame", k).Msg("transition completed")

	s.current.cancel()
	s.current, s.cursor = s.next, k
	s.next, s.plan, s.fade = nil, nil, nil
	s.state = Playing

	if s.cursor >= s.current.buf.Frames() {
		s.finishCurrent()
	}
	s.ensurePrep()
}

// finishCurrent drops a track that ran out without a transition.
func (s *Session) finishCurrent() {
	s.current.cancel()
	s.current, s.cursor = nil, 0
	s.fade = nil
}

// advance makes the next decodable queued track current, waiting for its
// decode when needed. Failed tracks are skipped with an event. An exhausted
// queue stops the session.
func (s *Session) advance() error {
	for s.state != Stopped {
		if len(s.queue) == 0 {
			s.stopLocked("queue exhausted")
			return nil
		}

		head := s.queue[0]
		s.ensurePrep()
		if !closed(head.decoded) {
			if err := s.waitFor(head.decoded); err != nil {
				return err
			}
			// Commands may have run while unlocked
			continue
		}

		s.queue = s.queue[1:]
		if head.err != nil {
			s.skipFailed(head)
			continue
		}

		s.current, s.cursor = head, 0
		if s.state != Paused {
			s.state = Playing
		}
		s.emit(Event{Type: EventTrackStarted, TrackID: head.id, Duration: head.buf.Duration()})
		s.logger.Info().Str("track", head.id).Dur("duration", head.buf.Duration()).Msg("track started")
		s.ensurePrep()
		return nil
	}
	return nil
}

// maybePlan asks the planner for the next transition once the cursor passes
// the lookahead point and the next track is decoded.
func (s *Session) maybePlan() error {
	for s.active() && s.current != nil && s.plan == nil && s.fade == nil && len(s.queue) > 0 {
		if s.cursor < s.lookaheadFrame() {
			return nil
		}

		head := s.queue[0]
		s.ensurePrep()

		if !closed(head.decoded) {
			if !s.cfg.WaitForAnalysis {
				return nil
			}
			if err := s.waitFor(head.decoded); err != nil {
				return err
			}
			continue
		}

		if head.err != nil {
			s.queue = s.queue[1:]
			s.skipFailed(head)
			continue
		}

		if s.cfg.WaitForAnalysis {
			if !closed(head.analyzed) {
				if err := s.waitFor(head.analyzed); err != nil {
					return err
				}
				continue
			}
			if !closed(s.current.analyzed) {
				if err := s.waitFor(s.current.analyzed); err != nil {
					return err
				}
				continue
			}
		}

		s.queue = s.queue[1:]
		plan := s.planner.Plan(s.sides(head))
		s.setPlan(head, plan)
		s.reportUnreliable(plan)
	}
	return nil
}

// lookaheadFrame is the cursor position where planning starts: Lookahead
// before the earliest overlap any configured crossfade could need.
func (s *Session) lookaheadFrame() int {
	longest := max(s.tcfg.MaxCrossfade, s.tcfg.FallbackCrossfade)
	return s.current.buf.Frames() - audio.FramesFor(longest+s.cfg.Lookahead, s.rate)
}

// sides describes the current track and in for the planner. Grids of tracks
// whose analysis is still running are left empty.
func (s *Session) sides(in *entry) (transition.Side, transition.Side) {
	out := transition.Side{
		ID:       s.current.id,
		Duration: s.current.buf.Duration(),
		Position: audio.DurationOf(s.cursor, s.rate),
	}
	if closed(s.current.analyzed) {
		out.Grid = s.current.analysis.Tail
	}

	incoming := transition.Side{ID: in.id, Duration: in.buf.Duration()}
	if closed(in.analyzed) {
		incoming.Grid = in.analysis.Head
	}

	return out, incoming
}

// setPlan converts plan to frames, clamped so the overlap starts no earlier
// than the cursor and fits both tracks. Both ends are converted separately so
// an overlap ending with the outgoing track ends on its last frame.
func (s *Session) setPlan(next *entry, plan transition.Plan) {
	total := s.current.buf.Frames()

	s.next = next
	s.plan = &plan
	s.planAt = max(s.cursor, min(audio.FramesFor(plan.Start, s.rate), total))
	end := min(audio.FramesFor(plan.End(), s.rate), total)
	s.planLen = max(0, min(end-s.planAt, next.buf.Frames()))

	s.logger.Info().
		Str("outgoing", plan.OutgoingID).
		Str("incoming", plan.IncomingID).
		Dur("start", plan.Start).
		Dur("duration", plan.Duration).
		Bool("beat_matched", plan.BeatMatched).
		Str("reason", string(plan.Reason)).
		Msg("transition planned")
}

func (s *Session) reportUnreliable(plan transition.Plan) {
	if plan.Reason != transition.ReasonUnreliable {
		return
	}

	check := func(e *entry, head bool) {
		if !closed(e.analyzed) {
			s.logger.Debug().Str("track", e.id).Msg("analysis pending at planning time")
			return
		}

		grid := e.analysis.Tail
		if head {
			grid = e.analysis.Head
		}
		if grid.Usable() || e.reportedUnreliable {
			return
		}
		e.reportedUnreliable = true
		s.emit(Event{Type: EventAnalysisUnreliable, TrackID: e.id})
		s.logger.Warn().Str("track", e.id).Msg("beat analysis unreliable, using fallback crossfade")
	}

	check(s.current, false)
	check(s.next, true)
}

func (s *Session) skipFailed(e *entry) {
	e.cancel()
	s.emit(Event{Type: EventTrackSkippedDecodeError, TrackID: e.id, Err: e.err})
	s.logger.Warn().Err(e.err).Str("track", e.id).Msg("skipping undecodable track")
	s.ensurePrep()
}

// waitFor releases the lock until ch closes or the session context ends.
func (s *Session) waitFor(ch <-chan struct{}) error {
	s.mu.Unlock()
	defer s.mu.Lock()

	select {
	case <-ch:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}
