// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 1e-6},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 1e-5},
		{"linear data stays linear", 1, 2, 3, 4, 0.25, 2.25, 1e-5},
		{"constant stays constant", 0.5, 0.5, 0.5, 0.5, 0.7, 0.5, 1e-6},
		{"symmetric midpoint", -1, -0.5, 0.5, 1, 0.5, 0, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > float64(tt.tolerance) {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		x        float32
		bitDepth int
		want     int
	}{
		{"zero", 0, 16, 0},
		{"positive peak 16", 1, 16, math.MaxInt16},
		{"negative peak 16", -1, 16, math.MinInt16},
		{"clamped above", 3, 16, math.MaxInt16},
		{"clamped below", -3, 16, math.MinInt16},
		{"half 16", 0.5, 16, 16383},
		{"negative peak 24", -1, 24, -(1 << 23)},
		{"positive peak 24", 1, 24, 1<<23 - 1},
		{"unknown depth as 16", -1, 12, math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt(tt.x, tt.bitDepth); got != tt.want {
				t.Errorf("Float32ToInt(%v, %d) = %d, want %d", tt.x, tt.bitDepth, got, tt.want)
			}
		})
	}

	if got := Float32ToInt16(-1); got != math.MinInt16 {
		t.Errorf("Float32ToInt16(-1) = %d, want %d", got, math.MinInt16)
	}
}

func TestIntToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v        int
		bitDepth int
		want     float32
	}{
		{0, 16, 0},
		{math.MinInt16, 16, -1},
		{16384, 16, 0.5},
		{-(1 << 23), 24, -1},
		{1 << 30, 32, 0.5},
		{-128, 8, -1},
	}

	for _, tt := range tests {
		if got := IntToFloat32(tt.v, tt.bitDepth); got != tt.want {
			t.Errorf("IntToFloat32(%d, %d) = %v, want %v", tt.v, tt.bitDepth, got, tt.want)
		}
	}
}

func TestRoundTrip16(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v += 97 {
		got := Float32ToInt(IntToFloat32(v, 16), 16)
		// Positive values lose at most one step to the asymmetric scale
		if d := got - v; d > 0 || d < -1 {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	for b.Loop() {
		_ = CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	for b.Loop() {
		_ = Float32ToInt16(0.73)
	}
}
