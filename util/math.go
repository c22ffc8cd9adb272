package util

import (
	"math"
	"math/rand"
)

func EpsEqual(x, y, eps float64) bool {
	return math.Abs(x-y) < eps
}

func ArrayEpsEquals(x, y []float64, eps float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !EpsEqual(x[i], y[i], eps) {
			return false
		}
	}
	return true
}

// RandomInInterval draws a uniform sample from [min, max).
func RandomInInterval(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}
