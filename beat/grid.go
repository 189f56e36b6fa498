// SPDX-License-Identifier: EPL-2.0

package beat

import (
	"math"
	"time"
)

// Grid is a regular beat grid estimated over one stretch of a track.
//
// Beats are absolute track times, strictly increasing. Phase is the grid
// origin reduced modulo the beat period. A Grid with BPM 0 carries no tempo.
type Grid struct {
	Beats      []time.Duration `json:"beats"`
	BPM        float64         `json:"bpm"`
	Phase      time.Duration   `json:"phase"`
	Confidence float64         `json:"confidence"`
	Reliable   bool            `json:"reliable"`
}

// Usable reports whether the grid may drive beat matching.
func (g Grid) Usable() bool {
	return g.Reliable && g.BPM > 0
}

// Period is the beat length.
func (g Grid) Period() time.Duration {
	if g.BPM <= 0 {
		return 0
	}
	return time.Duration(60 / g.BPM * float64(time.Second))
}

// PhaseAt returns the position of t within its beat as a fraction in [0, 1).
func (g Grid) PhaseAt(t time.Duration) float64 {
	if g.BPM <= 0 {
		return 0
	}
	beats := (t - g.Phase).Seconds() * g.BPM / 60
	return beats - math.Floor(beats)
}

// BeatsIn returns the beats in [from, to]. The slice aliases Beats.
func (g Grid) BeatsIn(from, to time.Duration) []time.Duration {
	lo := 0
	for lo < len(g.Beats) && g.Beats[lo] < from {
		lo++
	}
	hi := lo
	for hi < len(g.Beats) && g.Beats[hi] <= to {
		hi++
	}
	return g.Beats[lo:hi]
}

// PhaseDistance is the circular distance between two beat phases, in [0, 0.5].
func PhaseDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	d -= math.Floor(d)
	return min(d, 1-d)
}

// Analysis is the pair of grids the planner needs from one track.
type Analysis struct {
	Head     Grid          `json:"head"`
	Tail     Grid          `json:"tail"`
	Duration time.Duration `json:"duration"`
}
