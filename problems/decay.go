package problems

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type decay struct {
	lambda float64
	y0     float64
}

// NewDecay creates the scalar exponential decay y' = -lambda*y with
// y(0) = y0. The exact solution is y0 * exp(-lambda*t).
func NewDecay(lambda, y0 float64) JacobianProblem {
	return &decay{lambda: lambda, y0: y0}
}

func (d *decay) Description() string {
	return "exponential decay"
}

func (d *decay) Initialize() []float64 {
	return []float64{d.y0}
}

func (d *decay) Fcn(t float64, yT []float64, dy_out []float64) {
	dy_out[0] = -d.lambda * yT[0]
}

func (d *decay) Jac(t float64, yT []float64, jac *mat.Dense) {
	jac.Set(0, 0, -d.lambda)
}

// Exact evaluates the analytic solution at t.
func (d *decay) Exact(t float64) float64 {
	return d.y0 * math.Exp(-d.lambda*t)
}
