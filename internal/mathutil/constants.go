package mathutil

import "math"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

// WrapDegrees maps an angle in degrees to [0, 360).
func WrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
