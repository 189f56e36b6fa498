// SPDX-License-Identifier: EPL-2.0

package transition

import (
	"time"

	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/crossfade"
)

// Side describes one track of a transition.
//
// For the outgoing track Grid is its tail grid and Position the earliest
// allowed overlap start. For the incoming track Grid is its head grid and
// Position is ignored.
type Side struct {
	ID       string
	Duration time.Duration
	Position time.Duration
	Grid     beat.Grid
}

// Reason records why a plan took the shape it has.
type Reason string

const (
	ReasonBeatMatched   Reason = "beat_matched"
	ReasonUnreliable    Reason = "unreliable_grid"
	ReasonTempoMismatch Reason = "tempo_mismatch"
	ReasonNoAlignment   Reason = "no_aligned_beat"
	ReasonEmptyTrack    Reason = "empty_track"
	ReasonForced        Reason = "forced"
)

// Plan places the overlap of two tracks. Start is an offset into the
// outgoing track; the incoming track starts playing at Start.
type Plan struct {
	OutgoingID  string         `json:"outgoing_id"`
	IncomingID  string         `json:"incoming_id"`
	Start       time.Duration  `json:"start"`
	Duration    time.Duration  `json:"duration"`
	Curve       crossfade.Kind `json:"curve"`
	BeatMatched bool           `json:"beat_matched"`
	// PhaseError is the beat phase difference at the overlap midpoint, in
	// beats. Only meaningful when BeatMatched.
	PhaseError float64 `json:"phase_error"`
	// BPMRatio is outgoing over incoming tempo, 0 when either is unknown.
	BPMRatio float64 `json:"bpm_ratio"`
	Reason   Reason  `json:"reason"`
}

// End is the outgoing offset where the overlap finishes.
func (p Plan) End() time.Duration { return p.Start + p.Duration }
