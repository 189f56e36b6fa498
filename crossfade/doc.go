// SPDX-License-Identifier: EPL-2.0

// Package crossfade holds the sample math of blending two tracks.
//
// Gains exposes the curves, Blend renders any sub-range of an overlap
// window so callers can stream block by block, Render blends two whole
// segments and Ramp is the bounded forced fade used when a transition is
// cut short. All output is clamped to [-1, 1].
package crossfade
