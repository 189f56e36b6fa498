// SPDX-License-Identifier: EPL-2.0

package beatmix

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/session"
	"github.com/ik5/beatmix/transition"
)

var (
	ErrNoTracks       = errors.New("no tracks")
	ErrDuplicateTrack = errors.New("duplicate track id")
)

// Track is one compressed input of an offline mix.
type Track struct {
	ID   string
	Data []byte
	// Format is a hint such as "wav" or "mp3".
	Format string
}

// Options configures Mix and AnalyzeAll.
type Options struct {
	Decode     decode.Config
	Beat       beat.Config
	Transition transition.Config
	Session    session.Config

	// SortByTempo orders tracks by ascending head BPM before mixing. Tracks
	// without a tempo keep their relative order at the end.
	SortByTempo bool
	// Workers bounds concurrent analysis. 0 uses GOMAXPROCS.
	Workers int

	Sink   session.EventSink
	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Decode:     decode.DefaultConfig(),
		Beat:       beat.DefaultConfig(),
		Transition: transition.DefaultConfig(),
		Session:    session.DefaultConfig(),
		Logger:     zerolog.Nop(),
	}
}

func (o Options) Validate() error {
	if err := o.Decode.Validate(); err != nil {
		return err
	}
	if err := o.Beat.Validate(); err != nil {
		return err
	}
	if err := o.Transition.Validate(); err != nil {
		return err
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: negative workers", session.ErrInvalidConfig)
	}
	return o.Session.Validate()
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func checkTracks(tracks []Track) error {
	if len(tracks) == 0 {
		return ErrNoTracks
	}

	seen := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTrack, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
