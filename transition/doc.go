// SPDX-License-Identifier: EPL-2.0

// Package transition decides how two adjacent tracks overlap.
//
// Planning is pure: it looks at durations and beat grids and returns a Plan
// without touching samples. Rendering the plan is the job of the crossfade
// package.
package transition
