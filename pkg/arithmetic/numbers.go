package arithmetic

import "math"

// Epsilon is the tolerance used when comparing clock valuations
const Epsilon = 1e-9

func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func IsApproxInteger(value float64) bool {
	return ApproxEqual(value, math.Round(value))
}

// FractionalPart returns the fractional part of value, snapping values that are
// approximately integral to 0
func FractionalPart(value float64) float64 {
	if IsApproxInteger(value) {
		return 0
	}
	return value - math.Floor(value)
}

// IntegralPart returns the integral part of value, snapping values that are
// approximately integral to the closest integer
func IntegralPart(value float64) uint {
	if IsApproxInteger(value) {
		return uint(math.Round(value))
	}
	return uint(math.Floor(value))
}
