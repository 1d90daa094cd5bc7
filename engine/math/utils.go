package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const DegToRadMultiplier = m.Pi / 180.0
const RadToDegMultiplier = 180.0 / m.Pi

func DegToRad(degrees float32) float32 {
	return degrees * DegToRadMultiplier
}

func RadToDeg(radians float32) float32 {
	return radians * RadToDegMultiplier
}

func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RangeConvert remaps value from one range to another.
func RangeConvert(value, oldMin, oldMax, newMin, newMax float32) float32 {
	return ((value-oldMin)/(oldMax-oldMin))*(newMax-newMin) + newMin
}
