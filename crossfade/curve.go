// SPDX-License-Identifier: EPL-2.0

package crossfade

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects the gain law of a crossfade.
type Kind int

const (
	// EqualPower keeps out² + in² = 1 so perceived loudness stays constant.
	EqualPower Kind = iota
	Linear
)

// ParseKind accepts "equal_power" (or "equalPower") and "linear".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal_power", "equalpower", "equal-power":
		return EqualPower, nil
	case "linear":
		return Linear, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCurve, s)
}

func (k Kind) String() string {
	switch k {
	case EqualPower:
		return "equal_power"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != EqualPower && k != Linear {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCurve, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Gains returns the outgoing and incoming gains at progress p in [0, 1].
// The endpoints are exact: (1, 0) at p <= 0 and (0, 1) at p >= 1.
func Gains(kind Kind, p float64) (out, in float64) {
	switch {
	case p <= 0:
		return 1, 0
	case p >= 1:
		return 0, 1
	}

	if kind == Linear {
		return 1 - p, p
	}

	theta := p * math.Pi / 2
	return math.Cos(theta), math.Sin(theta)
}

// Progress maps frame i of an n-frame window to [0, 1] so that the first
// frame is pure outgoing and the last pure incoming.
func Progress(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(i) / float64(n-1)
}
