// SPDX-License-Identifier: EPL-2.0

package utils

// FullScale returns the magnitude of the most negative integer sample at
// bitDepth (e.g. 32768 for 16 bit). Unknown depths fall back to 16 bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

// IntToFloat32 maps a signed integer sample at bitDepth onto [-1, 1).
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(v) / FullScale(bitDepth)
}

// Float32ToInt clamps x to [-1, 1] and scales it to a signed integer sample
// at bitDepth. The positive peak stops one step short of full scale.
func Float32ToInt(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	scale := FullScale(bitDepth)
	if x < 0 {
		return int(x * scale)
	}
	return int(x * (scale - 1))
}

// Float32ToInt16 is Float32ToInt at 16 bit.
func Float32ToInt16(x float32) int16 {
	return int16(Float32ToInt(x, 16))
}
