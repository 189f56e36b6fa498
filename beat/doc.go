// SPDX-License-Identifier: EPL-2.0

// Package beat estimates tempo and beat positions of decoded audio.
//
// The estimator builds a log-energy flux envelope, picks onsets with an
// adaptive threshold, scores candidate beat periods by autocorrelation
// weighted with an inter-onset-interval histogram and fits a regular grid
// to the onsets. Tempos are folded by octaves into a configured range.
//
// Analyze returns separate grids for the head and tail of a track, which
// is what transition planning needs.
//
//	est := beat.NewEstimator(beat.DefaultConfig())
//	a := est.Analyze(buf)
//	if a.Tail.Usable() {
//		fmt.Printf("%.1f BPM\n", a.Tail.BPM)
//	}
package beat
