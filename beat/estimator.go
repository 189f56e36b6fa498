// SPDX-License-Identifier: EPL-2.0

package beat

import (
	"math"
	"time"

	"github.com/ik5/beatmix/audio"
)

// Estimator detects tempo and beat positions. It holds no state between
// calls and is safe for concurrent use.
type Estimator struct {
	cfg Config
}

func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

func (e *Estimator) Config() Config { return e.cfg }

// Analyze estimates the head and tail grids of buf over AnalysisWindow. A
// track no longer than the window gets the same grid twice.
func (e *Estimator) Analyze(buf *audio.Buffer) Analysis {
	dur := buf.Duration()
	head := e.EstimateRange(buf, 0, e.cfg.AnalysisWindow)
	if dur <= e.cfg.AnalysisWindow {
		return Analysis{Head: head, Tail: head, Duration: dur}
	}

	tail := e.EstimateRange(buf, dur-e.cfg.AnalysisWindow, dur)
	return Analysis{Head: head, Tail: tail, Duration: dur}
}

// Estimate analyzes the whole buffer.
func (e *Estimator) Estimate(buf *audio.Buffer) Grid {
	return e.EstimateRange(buf, 0, buf.Duration())
}

// EstimateRange analyzes [from, to) of buf. Beat times in the result are
// absolute track times.
func (e *Estimator) EstimateRange(buf *audio.Buffer, from, to time.Duration) Grid {
	if buf == nil || buf.Frames() == 0 || to <= from {
		return Grid{}
	}

	rate := buf.SampleRate
	startFrame := max(0, audio.FramesFor(from, rate))
	endFrame := min(buf.Frames(), audio.FramesFor(to, rate))
	if endFrame <= startFrame {
		return Grid{}
	}

	mono := downmix(buf.Window(startFrame, endFrame), buf.Channels)
	origin := audio.DurationOf(startFrame, rate).Seconds()
	end := audio.DurationOf(endFrame, rate).Seconds()

	return e.estimate(mono, rate, origin, end)
}

// downmix averages interleaved channels into a fresh mono slice.
func downmix(samples []float32, channels int) []float32 {
	view := &audio.Buffer{Samples: samples, SampleRate: 1, Channels: channels}
	mono, err := audio.Collect(audio.NewMonoMixer(view.Source()), 4096)
	if err != nil {
		// Buffer sources never fail
		return nil
	}
	return mono.Samples
}

// estimate runs the full pipeline on mono samples starting at origin seconds.
func (e *Estimator) estimate(mono []float32, rate int, origin, end float64) Grid {
	cfg := e.cfg
	win := max(1, audio.FramesFor(cfg.Window, rate))
	hop := max(1, audio.FramesFor(cfg.Hop, rate))
	hopSec := float64(hop) / float64(rate)

	flux := envelope(mono, win, hop)
	onsetFrames := pickOnsets(flux,
		int(math.Round(cfg.ThresholdSpan.Seconds()/hopSec)),
		int(math.Round(cfg.MinOnsetGap.Seconds()/hopSec)),
		cfg.ThresholdScale, cfg.ThresholdFloor)

	if len(onsetFrames) < 2 {
		return Grid{}
	}

	// The flux at frame m reports energy entering the newest hop of the window
	frameTime := func(m float64) float64 {
		return origin + (m*float64(hop)+float64(win)-float64(hop)/2)/float64(rate)
	}

	onsets := make([]float64, len(onsetFrames))
	for i, m := range onsetFrames {
		onsets[i] = frameTime(float64(m))
	}

	lagMin := int(math.Floor(60 / (cfg.SearchMaxBPM * hopSec)))
	lagMax := int(math.Ceil(60 / (cfg.SearchMinBPM * hopSec)))
	search := newTempoSearch(flux, onsetFrames, lagMin, lagMax)
	if search == nil {
		return Grid{}
	}

	lag, ok := search.dominant()
	if !ok {
		return Grid{}
	}
	fit := e.pickTempo(flux, onsets, frameTime, lag, hopSec)
	anchor, period := fit.anchor, fit.period

	grid := Grid{
		BPM:        60 / period,
		Phase:      seconds(math.Mod(anchor, period)),
		Confidence: fit.recall,
	}
	if grid.Phase < 0 {
		grid.Phase += seconds(period)
	}
	grid.Reliable = len(onsets) >= cfg.MinOnsets && grid.Confidence >= cfg.ConfidenceThreshold

	first := anchor + math.Ceil((origin-anchor)/period)*period
	for t := first; t < end; t += period {
		grid.Beats = append(grid.Beats, seconds(t))
	}

	return grid
}

// pickTempo fits a grid to the dominant lag folded into the tempo range and
// to every related lag inside it. A related tempo replaces the folded lag only
// when its grid explains the onsets OctaveAdvantage times better.
func (e *Estimator) pickTempo(flux, onsets []float64, frameTime func(float64) float64, lag, hopSec float64) gridFit {
	cfg := e.cfg
	tol := cfg.OnsetTolerance.Seconds()

	fitLag := func(l float64) gridFit {
		anchor, period := refine(onsets, frameTime(bestPhase(flux, l)), l*hopSec)
		return gridFit{
			anchor:    anchor,
			period:    period,
			recall:    confidence(onsets, anchor, period, tol),
			precision: coverage(onsets, anchor, period, tol),
		}
	}

	chosen := fitLag(foldOctaves(lag, hopSec, cfg.MinBPM, cfg.MaxBPM))
	best := chosen
	for _, r := range tempoRatios {
		l := lag * r
		if l < 1 {
			continue
		}
		if bpm := 60 / (l * hopSec); bpm < cfg.MinBPM || bpm > cfg.MaxBPM {
			continue
		}
		if f := fitLag(l); f.score() > best.score() {
			best = f
		}
	}

	if best.score() > cfg.OctaveAdvantage*chosen.score() {
		return best
	}
	return chosen
}

// bestPhase returns the offset in [0, lag) hops whose comb collects the most
// onset strength.
func bestPhase(flux []float64, lag float64) float64 {
	var best, bestSum float64
	for phase := 0.0; phase < lag; phase += 0.5 {
		var sum float64
		for pos := phase; pos < float64(len(flux)); pos += lag {
			lo := int(math.Floor(pos))
			v := flux[lo]
			if lo+1 < len(flux) {
				v = max(v, flux[lo+1])
			}
			sum += v
		}
		if sum > bestSum {
			best, bestSum = phase, sum
		}
	}
	return best
}

// maxPeriodDrift bounds how far the least-squares fit may move the period.
const maxPeriodDrift = 0.1

// refine fits t = anchor + k*period to the onsets that sit within a quarter
// beat of the initial grid.
func refine(onsets []float64, anchor, period float64) (float64, float64) {
	var ks, ts []float64
	for _, t := range onsets {
		k := math.Round((t - anchor) / period)
		if math.Abs(t-(anchor+k*period)) <= period/4 {
			ks = append(ks, k)
			ts = append(ts, t)
		}
	}
	if len(ks) < 2 {
		return anchor, period
	}

	var kMean, tMean float64
	for i := range ks {
		kMean += ks[i]
		tMean += ts[i]
	}
	kMean /= float64(len(ks))
	tMean /= float64(len(ks))

	var num, den float64
	for i := range ks {
		num += (ks[i] - kMean) * (ts[i] - tMean)
		den += (ks[i] - kMean) * (ks[i] - kMean)
	}
	if den == 0 {
		return anchor, period
	}

	slope := num / den
	if math.Abs(slope/period-1) > maxPeriodDrift {
		return anchor, period
	}
	return tMean - slope*kMean, slope
}

// confidence is the share of onsets within tol seconds of a grid beat.
func confidence(onsets []float64, anchor, period, tol float64) float64 {
	if len(onsets) == 0 {
		return 0
	}

	hits := 0
	for _, t := range onsets {
		k := math.Round((t - anchor) / period)
		if math.Abs(t-(anchor+k*period)) <= tol {
			hits++
		}
	}
	return float64(hits) / float64(len(onsets))
}

// coverage is the share of grid beats between the first and last onset that
// have an onset within tol seconds. onsets must be sorted.
func coverage(onsets []float64, anchor, period, tol float64) float64 {
	if len(onsets) == 0 || period <= 0 {
		return 0
	}

	first := math.Ceil((onsets[0] - tol - anchor) / period)
	last := onsets[len(onsets)-1] + tol

	beats, hits, i := 0, 0, 0
	for k := first; ; k++ {
		t := anchor + k*period
		if t > last {
			break
		}
		beats++
		for i < len(onsets) && onsets[i] < t-tol {
			i++
		}
		if i < len(onsets) && onsets[i] <= t+tol {
			hits++
		}
	}

	if beats == 0 {
		return 0
	}
	return float64(hits) / float64(beats)
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
