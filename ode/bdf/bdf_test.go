package bdf

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"
	"github.com/idontgetoutmuch/hmatrix-sundials-nova/problems"
)

func decayProblem() (*ode.Problem, problems.JacobianProblem) {
	d := problems.NewDecay(1.0, 1.0)
	return &ode.Problem{
		Rhs:      ode.Func(d.Fcn),
		Y0:       d.Initialize(),
		SolTimes: []float64{0.0, 1.0, 2.0},
		Tol:      ode.Tolerances{Rel: 1e-4, Abs: 1e-8},
	}, d
}

func TestDecayFiniteDifferenceJacobian(t *testing.T) {
	p, _ := decayProblem()

	sol, err := ode.Solve(p, New())
	require.NoError(t, err)

	require.Equal(t, []float64{0.0, 1.0, 2.0}, sol.Ts)
	assert.InDelta(t, math.Exp(-1), sol.Row(1)[0], 1e-2)
	assert.InDelta(t, math.Exp(-2), sol.Row(2)[0], 1e-2)

	// implicit kernel bookkeeping; no Jacobian was supplied, so the
	// finite-difference path must have been used
	assert.NotZero(t, sol.Diag.Steps)
	assert.NotZero(t, sol.Diag.StepAttempts)
	assert.NotZero(t, sol.Diag.RhsEvals)
	assert.NotZero(t, sol.Diag.RhsEvalsImplicit)
	assert.NotZero(t, sol.Diag.NonlinIters)
	assert.NotZero(t, sol.Diag.LinSolveSetups)
	assert.Zero(t, sol.Diag.JacEvals)
}

func TestDecayAnalyticJacobian(t *testing.T) {
	p, d := decayProblem()
	p.Jacobian = d.Jac

	sol, err := ode.Solve(p, New())
	require.NoError(t, err)

	assert.InDelta(t, math.Exp(-1), sol.Row(1)[0], 1e-2)
	assert.NotZero(t, sol.Diag.JacEvals)
	assert.NotZero(t, sol.Diag.LinSolveSetups)
}

func TestStiffLinear(t *testing.T) {
	// fast transient toward zero; an implicit kernel must not need
	// stability-limited steps to cross it
	p := &ode.Problem{
		Rhs: ode.Func(func(tt float64, y, dy []float64) {
			dy[0] = -50.0 * y[0]
		}),
		Y0:       []float64{1.0},
		SolTimes: []float64{0.0, 1.0},
		Tol:      ode.Tolerances{Rel: 1e-3, Abs: 1e-6},
	}

	sol, err := ode.Solve(p, New())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sol.Row(1)[0], 1e-3)
}

func TestVanishingWeightIsFatal(t *testing.T) {
	// zero absolute tolerance with a vanishing state makes every error
	// weight +Inf; the kernel must fail instead of stepping blind
	p := &ode.Problem{
		Rhs:      ode.Func(func(tt float64, y, dy []float64) { dy[0] = 0.0 }),
		Y0:       []float64{0.0},
		SolTimes: []float64{0.0, 1.0},
		Tol:      ode.Tolerances{Rel: 1e-4, Abs: 0.0},
	}

	_, err := ode.Solve(p, New())
	require.Error(t, err)

	var rep *ode.ErrorReport
	require.True(t, errors.As(err, &rep))
	assert.Equal(t, ode.CodeBadWeight, rep.Code)
}

func TestUninitializedStep(t *testing.T) {
	_, err := New().(*bdf).Step(1.0)
	require.Error(t, err)
}
