// SPDX-License-Identifier: EPL-2.0

package beat

import "math"

// tempoSearch scores lags of the onset envelope.
type tempoSearch struct {
	score          []float64 // indexed by lag in hops
	lagMin, lagMax int
}

// newTempoSearch autocorrelates the smoothed, mean-removed envelope and
// weights each lag by the inter-onset-interval histogram. Scores are kept
// up to twice lagMax so octave candidates can be compared.
func newTempoSearch(flux []float64, onsets []int, lagMin, lagMax int) *tempoSearch {
	n := len(flux)
	top := min(2*lagMax+2, n-1)
	if lagMin < 1 || top <= lagMin+1 {
		return nil
	}

	// 3-tap smoothing absorbs one hop of onset jitter
	env := make([]float64, n)
	var mean float64
	for m := range n {
		v := 0.5 * flux[m]
		if m > 0 {
			v += 0.25 * flux[m-1]
		}
		if m+1 < n {
			v += 0.25 * flux[m+1]
		}
		env[m] = v
		mean += v
	}
	mean /= float64(n)
	for m := range env {
		env[m] -= mean
	}

	// Biased estimate: dividing by n rather than n-lag favours the shorter
	// of two equally periodic lags.
	acf := make([]float64, top+1)
	for lag := lagMin / 2; lag <= top; lag++ {
		var sum float64
		for m := 0; m+lag < n; m++ {
			sum += env[m] * env[m+lag]
		}
		acf[lag] = sum / float64(n)
	}

	hist := make([]float64, top+1)
	var histMax float64
	for i := range onsets {
		for j := i + 1; j < len(onsets); j++ {
			d := onsets[j] - onsets[i]
			if d > top {
				break
			}
			for k := -2; k <= 2; k++ {
				if d+k < 0 || d+k > top {
					continue
				}
				hist[d+k] += math.Exp(-0.5 * float64(k*k))
				histMax = max(histMax, hist[d+k])
			}
		}
	}

	score := make([]float64, top+1)
	for lag := range score {
		w := 1.0
		if histMax > 0 {
			w += hist[lag] / histMax
		}
		score[lag] = max(0, acf[lag]) * w
	}

	return &tempoSearch{score: score, lagMin: lagMin, lagMax: min(lagMax, top-1)}
}

// dominant returns the best scoring lag refined by parabolic interpolation.
func (s *tempoSearch) dominant() (float64, bool) {
	best := -1
	for lag := s.lagMin; lag <= s.lagMax; lag++ {
		if best < 0 || s.score[lag] > s.score[best] {
			best = lag
		}
	}
	if best < 0 || s.score[best] <= 0 {
		return 0, false
	}

	lag := float64(best)
	if best > 0 && best+1 < len(s.score) {
		y0, y1, y2 := s.score[best-1], s.score[best], s.score[best+1]
		if denom := y0 - 2*y1 + y2; denom < 0 {
			lag += max(-0.5, min(0.5, 0.5*(y0-y2)/denom))
		}
	}
	return lag, true
}

// foldOctaves halves or doubles lag until its tempo lies in [minBPM, maxBPM].
func foldOctaves(lag, hopSec, minBPM, maxBPM float64) float64 {
	bpm := func(l float64) float64 { return 60 / (l * hopSec) }
	for bpm(lag) < minBPM {
		lag /= 2
	}
	for bpm(lag) > maxBPM {
		lag *= 2
	}
	return lag
}

// tempoRatios relate the dominant lag to the tempi a periodic envelope is
// most often confused with: octaves, thirds and the 2:3 family.
var tempoRatios = []float64{1.0 / 4, 1.0 / 3, 1.0 / 2, 2.0 / 3, 3.0 / 4, 4.0 / 3, 3.0 / 2, 2, 3}

// gridFit is a refined grid and how well it explains the onsets.
type gridFit struct {
	anchor, period float64
	// recall is the share of onsets on the grid, precision the share of
	// grid beats that carry an onset.
	recall, precision float64
}

func (f gridFit) score() float64 { return f.recall * f.precision }
