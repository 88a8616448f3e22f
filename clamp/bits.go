package clamp

import "math"

// BitsOfDouble returns the IEEE-754 bit pattern of x without numeric conversion.
func BitsOfDouble(x float64) uint64 {
	return math.Float64bits(x)
}

// DoubleOfBits returns the float64 whose bit pattern is b.
func DoubleOfBits(b uint64) float64 {
	return math.Float64frombits(b)
}
