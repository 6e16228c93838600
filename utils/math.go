package utils

import "math"

// DefaultEpsilon is the tolerance used by Float64AlmostEqual callers that have no better bound.
const DefaultEpsilon = 1e-9

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Clamp returns value restricted to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// Lerp linearly interpolates between a and b at ratio r.
func Lerp(a, b, r float64) float64 {
	return a + r*(b-a)
}

// NormalizeAngle wraps an angle in radians into [-pi, pi).
func NormalizeAngle(theta float64) float64 {
	a := math.Mod(theta+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AnyNaN reports whether any of the values is not-a-number.
func AnyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
