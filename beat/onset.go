// SPDX-License-Identifier: EPL-2.0

package beat

import "math"

// energyGain lifts typical frame energies into the part of log1p that
// behaves logarithmically.
const energyGain = 1000

// envelope returns the log-energy flux per hop: the half-wave rectified
// increase of compressed short-time energy from one frame to the next.
func envelope(mono []float32, win, hop int) []float64 {
	if win <= 0 || hop <= 0 || len(mono) < win {
		return nil
	}

	n := 1 + (len(mono)-win)/hop
	energy := make([]float64, n)
	for m := range n {
		var sum float64
		for _, s := range mono[m*hop : m*hop+win] {
			sum += float64(s) * float64(s)
		}
		energy[m] = math.Log1p(energyGain * sum / float64(win))
	}

	flux := make([]float64, n)
	for m := 1; m < n; m++ {
		flux[m] = max(0, energy[m]-energy[m-1])
	}
	return flux
}

// pickOnsets returns frame indices of local flux maxima above an adaptive
// threshold. Peaks closer than gap frames collapse into the stronger one.
func pickOnsets(flux []float64, span, gap int, scale, floor float64) []int {
	if len(flux) < 3 {
		return nil
	}

	prefix := make([]float64, len(flux)+1)
	for i, v := range flux {
		prefix[i+1] = prefix[i] + v
	}

	var onsets []int
	for m := 1; m < len(flux)-1; m++ {
		v := flux[m]
		if v < flux[m-1] || v <= flux[m+1] {
			continue
		}

		lo, hi := max(0, m-span), min(len(flux), m+span+1)
		mean := (prefix[hi] - prefix[lo]) / float64(hi-lo)
		if v <= scale*mean+floor {
			continue
		}

		if k := len(onsets); k > 0 && m-onsets[k-1] < gap {
			if v > flux[onsets[k-1]] {
				onsets[k-1] = m
			}
			continue
		}
		onsets = append(onsets, m)
	}

	return onsets
}
