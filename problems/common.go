package problems

import "gonum.org/v1/gonum/mat"

// Problem is a reusable test system: an initial state plus the right
// hand side of its differential equation.
type Problem interface {
	Description() string
	Initialize() []float64
	Fcn(t float64, yT []float64, dy_out []float64)
}

// JacobianProblem is a Problem that also carries an analytic Jacobian,
// for implicit kernels.
type JacobianProblem interface {
	Problem
	Jac(t float64, yT []float64, jac *mat.Dense)
}
