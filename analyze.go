// SPDX-License-Identifier: EPL-2.0

package beatmix

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/decode"
)

// TrackInfo is the analysis of one track. Err is set, and the grids are
// empty, when the track could not be decoded.
type TrackInfo struct {
	ID string `json:"id"`
	beat.Analysis
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// AnalyzeAll decodes and analyzes tracks concurrently. The result is in input
// order. A track that fails to decode is reported in its TrackInfo; only
// cancellation of ctx fails the whole call.
func AnalyzeAll(ctx context.Context, tracks []Track, opts Options) ([]TrackInfo, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	infos, _, err := analyzeAll(ctx, tracks, opts, false)
	return infos, err
}

// analyzeAll is AnalyzeAll that also returns the decoded buffers, in input
// order, when keep is set.
func analyzeAll(ctx context.Context, tracks []Track, opts Options, keep bool) ([]TrackInfo, []*audio.Buffer, error) {
	adapter := decode.NewAdapter(opts.Decode, opts.Logger)
	est := beat.NewEstimator(opts.Beat)
	infos := make([]TrackInfo, len(tracks))
	var bufs []*audio.Buffer
	if keep {
		bufs = make([]*audio.Buffer, len(tracks))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i, t := range tracks {
		g.Go(func() error {
			info := TrackInfo{ID: t.ID}

			buf, err := adapter.Decode(gctx, t.Data, t.Format)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				info.Err = err
				info.Error = err.Error()
				opts.Logger.Warn().Err(err).Str("track", t.ID).Msg("analysis skipped")
			} else {
				info.Analysis = est.Analyze(buf)
				if keep {
					bufs[i] = buf
				}
			}

			infos[i] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return infos, bufs, nil
}

// sortByTempo orders tracks by ascending head BPM. infos must match tracks.
func sortByTempo(tracks []Track, infos []TrackInfo) []Track {
	idx := make([]int, len(tracks))
	for i := range idx {
		idx[i] = i
	}

	bpm := func(i int) float64 { return infos[i].Head.BPM }
	slices.SortStableFunc(idx, func(a, b int) int {
		switch ba, bb := bpm(a), bpm(b); {
		case ba <= 0 && bb <= 0:
			return 0
		case ba <= 0:
			return 1
		case bb <= 0:
			return -1
		case ba < bb:
			return -1
		case ba > bb:
			return 1
		}
		return 0
	})

	out := make([]Track, len(tracks))
	for i, j := range idx {
		out[i] = tracks[j]
	}
	return out
}
