// SPDX-License-Identifier: EPL-2.0

package crossfade

import "errors"

var (
	ErrUnknownCurve = errors.New("unknown crossfade curve")
	ErrInvalidRamp  = errors.New("ramp length must be positive")
)
