package ode

import (
	"errors"
	"fmt"
	"math"
)

// Tolerances configures the local error control of a solve.
type Tolerances struct {
	// Rel is the scalar relative tolerance, must be > 0
	Rel float64

	// Abs is the scalar absolute tolerance applied to every component
	// when AbsVec is nil
	Abs float64

	// AbsVec, if non-nil, gives a per-component absolute tolerance and
	// must have one entry per state component
	AbsVec []float64
}

func (tol Tolerances) Validate(n int) error {
	if tol.Rel <= 0.0 {
		return errors.New("relative tolerance must be positive")
	}
	if tol.AbsVec == nil {
		if tol.Abs < 0.0 {
			return errors.New("absolute tolerance must not be negative")
		}
		return nil
	}
	if len(tol.AbsVec) != n {
		return fmt.Errorf("absolute tolerance vector has %d entries, system has %d components", len(tol.AbsVec), n)
	}
	for i, a := range tol.AbsVec {
		if a < 0.0 {
			return fmt.Errorf("absolute tolerance for component %d is negative", i)
		}
	}
	return nil
}

// Weights computes the error weight
//	w[i] = 1 / (atol_i + |y[i]| * rtol)
// for every component. Kernels use the weights to normalize local error
// estimates; on a fatal failure the weights in effect are surfaced in
// ErrorReport.VarWeights.
func (tol Tolerances) Weights(y, w []float64) {
	for i := range y {
		a := tol.Abs
		if tol.AbsVec != nil {
			a = tol.AbsVec[i]
		}
		w[i] = 1.0 / (a + math.Abs(y[i])*tol.Rel)
	}
}

// FiniteWeights reports whether every weight component is finite. A
// weight overflows to +Inf when the absolute tolerance is zero and the
// state component vanishes, which would silence the error test for that
// component; kernels treat it as a fatal failure.
func FiniteWeights(w []float64) bool {
	for _, wi := range w {
		if math.IsInf(wi, 0) || math.IsNaN(wi) {
			return false
		}
	}
	return true
}

// WeightedRMS is the weighted root mean square norm used for the error
// test: a step is accepted when the norm of its error estimate is <= 1.
func WeightedRMS(v, w []float64) float64 {
	sum := 0.0
	for i := range v {
		e := v[i] * w[i]
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(v)))
}
