// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/crossfade"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/transition"
)

type State int

const (
	Idle State = iota
	Playing
	Transitioning
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Transitioning:
		return "transitioning"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Decoder turns fetched media into PCM in the session's format.
type Decoder interface {
	Decode(ctx context.Context, data []byte, hint string) (*audio.Buffer, error)
	Config() decode.Config
}

type Analyzer interface {
	Analyze(buf *audio.Buffer) beat.Analysis
}

// Options carries the collaborators of a session.
type Options struct {
	Fetcher    Fetcher
	Decoder    Decoder
	Analyzer   Analyzer
	Transition transition.Config
	Sink       EventSink
	Logger     zerolog.Logger
}

// Session mixes a queue of tracks into one stream.
//
// Commands and reads are serialized by one mutex. The output is pulled with
// ReadSamples or ReadFrame by a single consumer.
type Session struct {
	id       uuid.UUID
	cfg      Config
	rate     int
	channels int

	fetcher  Fetcher
	decoder  Decoder
	analyzer Analyzer
	sink     EventSink
	logger   zerolog.Logger
	base     zerolog.Logger

	// ctx and cancel are set once in New so Stop can cancel without the lock
	ctx        context.Context
	cancel     context.CancelFunc
	stopParent func() bool
	wg         sync.WaitGroup

	mu       sync.Mutex
	state    State
	resume   State
	running  bool
	tcfg     transition.Config
	planner  *transition.Planner
	queue    []*entry
	current  *entry
	cursor   int // frames into current
	next     *entry
	plan     *transition.Plan
	planAt   int // overlap start in current, frames
	planLen  int // overlap length, frames
	fade     *crossfade.Ramp
	frameLen int // samples per ReadFrame
}

func New(cfg Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Transition.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if opts.Decoder == nil || opts.Analyzer == nil || opts.Fetcher == nil {
		return nil, ErrMissingDependency
	}

	dcfg := opts.Decoder.Config()
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}

	id := uuid.New()
	logger := opts.Logger.With().Str("component", "session").Str("session", id.String()).Logger()

	s := &Session{
		id:       id,
		cfg:      cfg,
		rate:     dcfg.SampleRate,
		channels: dcfg.Channels,
		fetcher:  opts.Fetcher,
		decoder:  opts.Decoder,
		analyzer: opts.Analyzer,
		sink:     sink,
		logger:   logger,
		base:     opts.Logger,
		tcfg:     opts.Transition,
		planner:  transition.NewPlanner(opts.Transition, opts.Logger),
		frameLen: max(1, audio.FramesFor(cfg.FrameDuration, dcfg.SampleRate)) * dcfg.Channels,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	return s, nil
}

func (s *Session) ID() string { return s.id.String() }

// Start begins playback and returns once the first decodable track is
// ready. An empty queue stops the session immediately. ctx bounds the whole
// session, not just the call.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Stopped:
		return ErrStopped
	case Idle:
		if s.running {
			return ErrAlreadyStarted
		}
	default:
		return ErrAlreadyStarted
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	s.running = true
	s.stopParent = context.AfterFunc(ctx, s.cancel)
	s.logger.Info().Int("queued", len(s.queue)).Msg("session starting")

	if err := s.advance(); err != nil {
		s.stopLocked("start aborted")
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Enqueue appends a track to the queue.
func (s *Session) Enqueue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return ErrStopped
	}

	s.queue = append(s.queue, newEntry(id))
	s.ensurePrep()
	return nil
}

// Remove drops the first pending occurrence of id from the queue and cancels
// its preparation. The current track and a transition in progress cannot be
// removed.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return ErrStopped
	}
	if s.current != nil && s.current.id == id {
		return ErrTrackBusy
	}

	if s.next != nil && s.next.id == id {
		if s.inOverlap() {
			return ErrTrackBusy
		}
		// Planned but not audible yet
		s.next.cancel()
		s.next, s.plan = nil, nil
		s.ensurePrep()
		return nil
	}

	for i, e := range s.queue {
		if e.id != id {
			continue
		}
		e.cancel()
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		s.ensurePrep()
		return nil
	}

	return fmt.Errorf("remove %q: %w", id, ErrTrackNotFound)
}

// Skip moves on to the next track without a hard cut. During a transition
// the outgoing track ramps out over SkipFade. While playing, a decoded next
// track gets an immediate short crossfade; otherwise the current track
// fades out and the queue advances.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		return ErrNotStarted
	case Stopped:
		return ErrStopped
	}

	if s.fade != nil {
		return nil
	}

	if s.current == nil {
		// Between tracks, waiting on a decode: drop the pending head
		if len(s.queue) > 0 {
			s.queue[0].cancel()
			s.queue = s.queue[1:]
			s.ensurePrep()
		}
		return nil
	}

	fadeFrames := max(1, audio.FramesFor(s.cfg.SkipFade, s.rate))

	if s.inOverlap() {
		k := s.cursor - s.planAt
		gOut, gIn := crossfade.Gains(s.plan.Curve, crossfade.Progress(k, s.planLen))
		s.fade, _ = crossfade.NewRamp(gOut, gIn, fadeFrames)
		s.logger.Info().Str("track", s.current.id).Msg("skip during transition")
		return nil
	}

	next := s.next
	if next == nil && len(s.queue) > 0 && closed(s.queue[0].decoded) && s.queue[0].err == nil {
		next = s.queue[0]
		s.queue = s.queue[1:]
	}

	if next != nil {
		out, in := s.sides(next)
		s.setPlan(next, s.planner.Forced(out, in, s.cfg.SkipFade))
		s.logger.Info().Str("track", s.current.id).Str("next", next.id).Msg("skip with crossfade")
		return nil
	}

	s.fade, _ = crossfade.NewRamp(1, 0, fadeFrames)
	s.logger.Info().Str("track", s.current.id).Msg("skip with fade out")
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		return ErrNotStarted
	case Stopped:
		return ErrStopped
	case Paused:
		return nil
	}

	s.resume, s.state = s.state, Paused
	return nil
}

// Resume restores the state Pause interrupted.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		return ErrNotStarted
	case Stopped:
		return ErrStopped
	case Paused:
		s.state = s.resume
	}
	return nil
}

// Stop ends the session. Reads return io.EOF afterwards.
func (s *Session) Stop() error {
	// Wake a read that waits on a decode before taking the lock
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked("stopped")
	return nil
}

// Close stops the session and waits for background preparation to exit.
func (s *Session) Close() error {
	err := s.Stop()
	s.wg.Wait()
	return err
}

// SetCrossfadeLength sets both the beat-matched maximum and the fallback
// overlap for transitions planned from now on.
func (s *Session) SetCrossfadeLength(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return ErrStopped
	}
	if d < s.tcfg.MinCrossfade || d <= 0 || d > s.tcfg.IntroWindow {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidCrossfade, d, s.tcfg.MinCrossfade, s.tcfg.IntroWindow)
	}

	s.tcfg.MaxCrossfade = d
	s.tcfg.FallbackCrossfade = d
	s.planner = transition.NewPlanner(s.tcfg, s.base)
	return nil
}

// SetCurveKind selects the curve of transitions planned from now on.
func (s *Session) SetCurveKind(kind crossfade.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return ErrStopped
	}
	if kind != crossfade.EqualPower && kind != crossfade.Linear {
		return fmt.Errorf("%w: %v", ErrUnknownCurve, kind)
	}

	s.tcfg.Curve = kind
	s.planner = transition.NewPlanner(s.tcfg, s.base)
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NowPlaying returns the current track id. During a transition that is the
// outgoing track.
func (s *Session) NowPlaying() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ""
	}
	return s.current.id
}

// Position is the playback offset into the current track.
func (s *Session) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return audio.DurationOf(s.cursor, s.rate)
}

// Queue lists the tracks that have not started playing yet.
func (s *Session) Queue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.queue)+1)
	if s.next != nil && !s.inOverlap() {
		ids = append(ids, s.next.id)
	}
	for _, e := range s.queue {
		ids = append(ids, e.id)
	}
	return ids
}

func (s *Session) inOverlap() bool {
	return s.plan != nil && s.cursor >= s.planAt
}

// stopLocked moves to Stopped once. Caller holds s.mu.
func (s *Session) stopLocked(reason string) {
	if s.state == Stopped {
		return
	}

	s.state = Stopped
	s.cancel()
	if s.stopParent != nil {
		s.stopParent()
	}

	for _, e := range s.queue {
		e.cancel()
	}
	for _, e := range []*entry{s.current, s.next} {
		if e != nil {
			e.cancel()
		}
	}
	s.queue, s.current, s.next, s.plan, s.fade = nil, nil, nil, nil, nil
	s.cursor = 0

	s.emit(Event{Type: EventSessionStopped, Reason: reason})
	s.logger.Info().Str("reason", reason).Msg("session stopped")
}

func (s *Session) emit(ev Event) {
	ev.SessionID = s.id.String()
	ev.Time = time.Now()
	if ev.Err != nil {
		ev.Error = ev.Err.Error()
	}
	s.sink.Emit(ev)
}
