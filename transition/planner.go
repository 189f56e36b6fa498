// SPDX-License-Identifier: EPL-2.0

package transition

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/beat"
)

// phaseTie is the phase difference, in beats, below which two candidates
// count as equally aligned.
const phaseTie = 0.01

// Planner decides where and how two tracks overlap. It never fails and is
// safe for concurrent use.
type Planner struct {
	cfg    Config
	logger zerolog.Logger
}

func NewPlanner(cfg Config, logger zerolog.Logger) *Planner {
	return &Planner{cfg: cfg, logger: logger.With().Str("component", "planner").Logger()}
}

func (p *Planner) Config() Config { return p.cfg }

// Plan chooses the overlap of out into in. The overlap always ends with the
// outgoing track. Beat-matching is tried when both grids are usable and their
// tempos agree within BPMTolerance; it anchors the overlap on a beat pair, so
// its length may fall up to one beat short of MaxCrossfade. Otherwise the
// overlap is a fixed fade.
func (p *Planner) Plan(out, in Side) Plan {
	plan := Plan{
		OutgoingID: out.ID,
		IncomingID: in.ID,
		Curve:      p.cfg.Curve,
		BPMRatio:   ratio(out.Grid.BPM, in.Grid.BPM),
	}

	if out.Duration <= 0 || in.Duration <= 0 {
		plan.Start = max(0, out.Duration)
		plan.Reason = ReasonEmptyTrack
		return plan
	}

	pos := max(0, min(out.Position, out.Duration))
	remaining := out.Duration - pos
	intro := min(p.cfg.IntroWindow, in.Duration)

	reason := p.matchable(out.Grid, in.Grid, plan.BPMRatio)
	if reason == ReasonBeatMatched {
		d := min(p.cfg.MaxCrossfade, remaining, intro)
		if d >= p.cfg.MinCrossfade && d > 0 {
			if start, phaseErr, ok := align(out, in, d, p.cfg.MinCrossfade); ok {
				plan.Start = start
				plan.Duration = out.Duration - start
				plan.BeatMatched = true
				plan.PhaseError = phaseErr
				plan.Reason = ReasonBeatMatched
				p.log(plan)
				return plan
			}
		}
		reason = ReasonNoAlignment
	}

	d := p.fallbackDuration(p.cfg.FallbackCrossfade, remaining, intro, in.Duration)
	plan.Start = out.Duration - d
	plan.Duration = d
	plan.Reason = reason
	p.log(plan)
	return plan
}

// Forced plans an immediate fixed fade of at most length starting at out's
// position.
func (p *Planner) Forced(out, in Side, length time.Duration) Plan {
	pos := max(0, min(out.Position, out.Duration))
	intro := min(p.cfg.IntroWindow, in.Duration)
	d := p.fallbackDuration(length, out.Duration-pos, intro, in.Duration)

	plan := Plan{
		OutgoingID: out.ID,
		IncomingID: in.ID,
		Start:      pos,
		Duration:   d,
		Curve:      p.cfg.Curve,
		BPMRatio:   ratio(out.Grid.BPM, in.Grid.BPM),
		Reason:     ReasonForced,
	}
	p.log(plan)
	return plan
}

func (p *Planner) matchable(out, in beat.Grid, bpmRatio float64) Reason {
	if !out.Usable() || !in.Usable() {
		return ReasonUnreliable
	}
	if math.Abs(bpmRatio-1) > p.cfg.BPMTolerance {
		return ReasonTempoMismatch
	}
	return ReasonBeatMatched
}

// fallbackDuration caps want by the audio left on both sides and raises
// tiny results to MinCrossfade where the audio allows it.
func (p *Planner) fallbackDuration(want, remaining, intro, inDur time.Duration) time.Duration {
	d := max(0, min(want, remaining, intro))
	if d < p.cfg.MinCrossfade {
		d = max(d, min(p.cfg.MinCrossfade, remaining, inDur))
	}
	return d
}

func (p *Planner) log(plan Plan) {
	p.logger.Debug().
		Str("outgoing", plan.OutgoingID).
		Str("incoming", plan.IncomingID).
		Dur("start", plan.Start).
		Dur("duration", plan.Duration).
		Bool("beat_matched", plan.BeatMatched).
		Float64("phase_error", plan.PhaseError).
		Str("reason", string(plan.Reason)).
		Msg("transition planned")
}

// align searches the beat pairs that can anchor an overlap ending with the
// outgoing track and lasting between minD and maxD. It returns the start with
// the smallest phase error at the overlap midpoint; among starts within
// phaseTie of that minimum it takes the earliest, which gives the longest
// overlap.
func align(out, in Side, maxD, minD time.Duration) (time.Duration, float64, bool) {
	type candidate struct {
		start time.Duration
		err   float64
	}

	earliest := out.Duration - maxD
	var cands []candidate
	for _, bOut := range out.Grid.BeatsIn(earliest, out.Duration) {
		for _, bIn := range in.Grid.BeatsIn(0, maxD) {
			start := bOut - bIn
			d := out.Duration - start
			if start < earliest || d < minD || d <= 0 || bIn > d {
				continue
			}

			mid := start + d/2
			cands = append(cands, candidate{
				start: start,
				err:   beat.PhaseDistance(out.Grid.PhaseAt(mid), in.Grid.PhaseAt(mid-start)),
			})
		}
	}
	if len(cands) == 0 {
		return 0, 0, false
	}

	minErr := math.Inf(1)
	for _, c := range cands {
		minErr = min(minErr, c.err)
	}

	best := candidate{start: out.Duration}
	for _, c := range cands {
		if c.err <= minErr+phaseTie && c.start < best.start {
			best = c
		}
	}
	return best.start, best.err, true
}

func ratio(out, in float64) float64 {
	if out <= 0 || in <= 0 {
		return 0
	}
	return out / in
}
