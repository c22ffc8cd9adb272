package ode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightFormula(t *testing.T) {
	tol := Tolerances{Rel: 1e-6, Abs: 1e-9}

	y := []float64{0.0, 1.0, -2.5, 1e6}
	w := make([]float64, len(y))
	tol.Weights(y, w)

	for i := range y {
		expected := 1.0 / (1e-9 + math.Abs(y[i])*1e-6)
		assert.Equal(t, expected, w[i], "component %d", i)
	}
}

func TestWeightVector(t *testing.T) {
	tol := Tolerances{Rel: 1e-3, AbsVec: []float64{1e-6, 1e-2}}

	y := []float64{2.0, -4.0}
	w := make([]float64, 2)
	tol.Weights(y, w)

	assert.Equal(t, 1.0/(1e-6+2.0*1e-3), w[0])
	assert.Equal(t, 1.0/(1e-2+4.0*1e-3), w[1])
}

func TestFiniteWeights(t *testing.T) {
	w := make([]float64, 2)

	Tolerances{Rel: 1e-6, Abs: 1e-9}.Weights([]float64{0.0, 1.0}, w)
	assert.True(t, FiniteWeights(w))

	// zero absolute tolerance is valid, but once a state component
	// vanishes the weight overflows to +Inf
	Tolerances{Rel: 1e-6, Abs: 0.0}.Weights([]float64{0.0, 1.0}, w)
	assert.True(t, math.IsInf(w[0], 1))
	assert.False(t, FiniteWeights(w))
}

func TestToleranceValidation(t *testing.T) {
	cases := []struct {
		name string
		tol  Tolerances
		n    int
		ok   bool
	}{
		{"valid scalar", Tolerances{Rel: 1e-6, Abs: 1e-9}, 3, true},
		{"valid vector", Tolerances{Rel: 1e-6, AbsVec: []float64{1, 2, 3}}, 3, true},
		{"zero rel", Tolerances{Rel: 0, Abs: 1e-9}, 3, false},
		{"negative rel", Tolerances{Rel: -1e-6, Abs: 1e-9}, 3, false},
		{"negative abs", Tolerances{Rel: 1e-6, Abs: -1e-9}, 3, false},
		{"vector length mismatch", Tolerances{Rel: 1e-6, AbsVec: []float64{1, 2}}, 3, false},
		{"negative vector entry", Tolerances{Rel: 1e-6, AbsVec: []float64{1, -2, 3}}, 3, false},
		{"zero abs allowed", Tolerances{Rel: 1e-6, Abs: 0}, 3, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.tol.Validate(c.n)
			if c.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestWeightedRMS(t *testing.T) {
	v := []float64{3.0, 4.0}
	w := []float64{1.0, 1.0}
	// sqrt((9+16)/2)
	assert.InDelta(t, math.Sqrt(12.5), WeightedRMS(v, w), 1e-15)

	w = []float64{2.0, 0.5}
	assert.InDelta(t, math.Sqrt((36.0+4.0)/2.0), WeightedRMS(v, w), 1e-15)
}
