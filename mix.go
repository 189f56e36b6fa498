// SPDX-License-Identifier: EPL-2.0

package beatmix

import (
	"context"
	"fmt"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/session"
)

// Mix renders tracks, in order or sorted by tempo, into one buffer at the
// decode rate and channel count. Tracks that fail to decode are skipped and
// reported to opts.Sink.
//
// Planning waits for every analysis, so the result only depends on the input.
func Mix(ctx context.Context, tracks []Track, opts Options) (*audio.Buffer, error) {
	s, err := NewSession(ctx, tracks, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	buf, err := audio.CollectContext(ctx, s, opts.Decode.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("render mix: %w", err)
	}
	// A canceled ctx stops the session, which ends the stream early
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render mix: %w", err)
	}
	return buf, nil
}

// NewSession starts an offline session over tracks. The caller reads the
// mix from it and closes it.
func NewSession(ctx context.Context, tracks []Track, opts Options) (*session.Session, error) {
	if err := checkTracks(tracks); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		decoder  session.Decoder  = decode.NewAdapter(opts.Decode, opts.Logger)
		analyzer session.Analyzer = beat.NewEstimator(opts.Beat)
	)

	order := tracks
	if opts.SortByTempo {
		infos, bufs, err := analyzeAll(ctx, tracks, opts, true)
		if err != nil {
			return nil, err
		}
		order = sortByTempo(tracks, infos)

		p := newPrepared(decoder, analyzer)
		for i, t := range tracks {
			p.add(t.Data, bufs[i], infos[i].Analysis)
		}
		decoder, analyzer = p, p
	}

	fetcher := session.NewMemoryFetcher()
	for _, t := range order {
		fetcher.Add(t.ID, session.Media{Data: t.Data, Format: t.Format})
	}

	scfg := opts.Session
	scfg.WaitForAnalysis = true

	s, err := session.New(scfg, session.Options{
		Fetcher:    fetcher,
		Decoder:    decoder,
		Analyzer:   analyzer,
		Transition: opts.Transition,
		Sink:       opts.Sink,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	for _, t := range order {
		if err := s.Enqueue(t.ID); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
