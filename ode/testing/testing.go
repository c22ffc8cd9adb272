package testing

import (
	"math"
	"testing"

	"github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"
	"github.com/idontgetoutmuch/hmatrix-sundials-nova/util"
)

var iterationsPerTest = 10

type solution func(float64) []float64

// x^2 + C
func order2(t float64) []float64 {
	return []float64{t * t}
}
func order2Deriv(t float64, y []float64, dy []float64) {
	dy[0] = 2 * t
}

// 10*x^3+ PI * x^2 +142 * x + 10
func order3(t float64) []float64 {
	return []float64{10*math.Pow(t, 3) + math.Pi*math.Pow(t, 2) + 142*t + 10}
}
func order3Deriv(t float64, y []float64, dy []float64) {
	dy[0] = 30*math.Pow(t, 2) + 2*math.Pi*t + 142
}

// 83.23454 * x^4 + 42.4543*x^3+ E * x^2
func order4(t float64) []float64 {
	return []float64{83.23454*math.Pow(t, 4) + 42.4543*math.Pow(t, 3) + math.E*math.Pow(t, 2)}
}
func order4Deriv(t float64, y []float64, dy []float64) {
	dy[0] = 4*83.23454*math.Pow(t, 3) + 3*42.4543*math.Pow(t, 2) + 2*math.E*t
}

type IntegrationTest struct {
	TMin, TMax float64
	Sol        solution
	Fcn        ode.Func
	Order      uint
	Name       string
}

var IntegrationTests = []IntegrationTest{
	{-10, 10, order2, order2Deriv, 2, "x^2"},
	{-10, 10, order3, order3Deriv, 3, "x^3"},
	{-10, 10, order4, order4Deriv, 4, "x^4"},
}

// RunStepperTests drives every kernel through the integration driver on
// the polynomial problems whose order it should reproduce, starting from
// random subintervals.
func RunStepperTests(t *testing.T, steppers []ode.Stepper, iterations int) {
	var eps float64 = 0.0001

	for _, k := range steppers {
		if k == nil {
			continue
		}

		info := k.Info()

		if testing.Verbose() {
			t.Logf("%s\tTest\tT0\tTE\tSteps\tAttempts\tEval", info.Name)
		}

		for _, v := range IntegrationTests {
			if v.Order > info.Order {
				t.Logf("Skipped Test %s for %s, order too high", v.Name, info.Name)
				continue
			}
			for i := 0; i < iterations; i++ {
				t0 := util.RandomInInterval(v.TMin, v.TMax)
				te := util.RandomInInterval(t0, v.TMax)
				if te <= t0 {
					continue
				}

				p := &ode.Problem{
					Rhs:      v.Fcn,
					Y0:       v.Sol(t0),
					SolTimes: []float64{t0, te},
					Tol:      ode.Tolerances{Rel: 1e-8, Abs: 1e-8},
				}
				sol, err := ode.Solve(p, k)
				if err != nil {
					t.Errorf("%s on %s: %s", info.Name, v.Name, err.Error())
					continue
				}

				last := sol.Row(len(sol.Ts) - 1)
				ye := v.Sol(te)
				if !util.EpsEqual(sol.Ts[len(sol.Ts)-1], te, eps) {
					t.Errorf("Tried to integrate up to %f but only reached %f", te, sol.Ts[len(sol.Ts)-1])
				}
				if !util.ArrayEpsEquals(last, ye, eps) {
					t.Errorf("Expected %v but result was %v", ye, last)
				}
				if testing.Verbose() {
					t.Logf(" \t%s\t%.2f\t%.2f\t%d\t%d\t%d",
						v.Name, t0, te, sol.Diag.Steps, sol.Diag.StepAttempts, sol.Diag.RhsEvals)
				}
			}
		}
	}
}
