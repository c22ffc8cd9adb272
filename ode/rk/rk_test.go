package rk

import (
	"math"
	"testing"

	"github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"
	odetesting "github.com/idontgetoutmuch/hmatrix-sundials-nova/ode/testing"
	"github.com/idontgetoutmuch/hmatrix-sundials-nova/problems"
	"github.com/idontgetoutmuch/hmatrix-sundials-nova/util"
)

func TestAllRK(t *testing.T) {
	if testing.Short() {
		t.Skipf("Skipping because we're running in short test mode.")
	}

	steppers := make([]ode.Stepper, NumberOfRKMethods)
	for j := 0; j < int(NumberOfRKMethods); j++ {
		k, err := NewRK(RKMethod(j))
		if err != nil {
			t.Errorf("Couldn't create RK Method %d: %s", j, err.Error())
		} else {
			steppers[j] = k
		}
	}

	odetesting.RunStepperTests(t, steppers, 1)
}

func TestRKMBody(t *testing.T) {
	k, _ := NewRK(DoPri5)
	mbody := problems.NewMBody(4)
	instance := mbody.Initialize()

	p := &ode.Problem{
		Rhs:      ode.Func(mbody.Fcn),
		Y0:       instance,
		SolTimes: []float64{0.0, 0.1},
		Tol:      ode.Tolerances{Rel: 1.e-5, Abs: 1.e-5},
	}

	sol, err := ode.Solve(p, k)
	if err != nil {
		t.Fatalf("Integration failed - %s", err.Error())
	}

	if testing.Verbose() {
		t.Logf("MBody: %d steps, %d attempts, %d evaluations", sol.Diag.Steps, sol.Diag.StepAttempts, sol.Diag.RhsEvals)
		t.Logf("MBody: result[0..10] = %f", sol.Row(1)[:10])
	}
}

func TestDenseOutput(t *testing.T) {
	k, _ := NewRK(DoPri5)

	cfg := &ode.Config{
		Rhs: ode.Func(func(tt float64, y, dy []float64) {
			dy[0] = math.Cos(tt)
		}),
		Tol: ode.Tolerances{Rel: 1e-9, Abs: 1e-9},
	}

	if err := k.Init(0.0, []float64{0.0}, cfg); err != nil {
		t.Fatalf("Init failed - %s", err.Error())
	}

	res, err := k.Step(1.0)
	if err != nil {
		t.Fatalf("Step failed - %s", err.Error())
	}

	// the interpolant must track sin(t) across the whole step
	y := make([]float64, 1)
	for _, theta := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		tt := theta * res.T
		k.Interpolate(tt, y)
		if !util.EpsEqual(y[0], math.Sin(tt), 1e-4) {
			t.Errorf("dense output at %f: expected %f, got %f", tt, math.Sin(tt), y[0])
		}
	}
}

func TestStepNeverPassesLimit(t *testing.T) {
	k, _ := NewRK(DoPri5)

	cfg := &ode.Config{
		Rhs: ode.Func(func(tt float64, y, dy []float64) {
			dy[0] = -y[0]
		}),
		Tol:             ode.Tolerances{Rel: 1e-6, Abs: 1e-9},
		InitialStepSize: 10.0,
	}

	if err := k.Init(0.0, []float64{1.0}, cfg); err != nil {
		t.Fatalf("Init failed - %s", err.Error())
	}

	res, err := k.Step(0.5)
	if err != nil {
		t.Fatalf("Step failed - %s", err.Error())
	}
	if res.T > 0.5 {
		t.Errorf("step passed the limit: reached %f", res.T)
	}
}
