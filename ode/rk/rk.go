package rk

import (
	"errors"
	"math"

	"github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"
	"github.com/idontgetoutmuch/hmatrix-sundials-nova/util"
)

type RKMethod int

type rk struct {
	ode.StepperInfo
	method           RKMethod
	firstStageAsLast bool
	b, c, e          []float64
	a                [][]float64

	// live integration state
	cfg *ode.Config
	n   int

	t, tPrev     float64
	y, f         []float64 // state and derivative at t
	yPrev, fPrev []float64 // left end of the last accepted step
	hNext        float64   // step size proposal

	yTry, yErr, w []float64
	ks            [][]float64

	steps        uint // accepted steps since Init/Reset
	pendingEvals uint // rhs work done in Init/Reset, reported with the next step
}

func (r *rk) Init(t float64, y []float64, c *ode.Config) error {
	if r.a == nil || r.b == nil || r.c == nil {
		return errors.New("rk method coefficients not initialized")
	}
	n := len(y)
	if err := c.ValidateAndPrepare(n); err != nil {
		return err
	}

	r.cfg = c
	r.n = n
	r.y = append(r.y[:0], y...)
	r.f = make([]float64, n)
	r.yPrev = append(r.yPrev[:0], y...)
	r.fPrev = make([]float64, n)
	r.yTry = make([]float64, n)
	r.yErr = make([]float64, n)
	r.w = make([]float64, n)
	r.ks = util.MakeRectangular(r.Stages, uint(n))

	if err := c.Rhs.Eval(t, r.y, r.f); err != nil {
		return err
	}
	r.pendingEvals = 1

	r.t, r.tPrev = t, t
	copy(r.fPrev, r.f)
	r.steps = 0

	r.hNext = c.InitialStepSize
	if r.hNext <= 0.0 {
		h, err := ode.EstimateStepSize(t, r.y, r.f, c, r.Order)
		if err != nil {
			return err
		}
		r.hNext = h
		r.pendingEvals += 2
	}
	return nil
}

func (r *rk) Reset(t float64, y []float64) error {
	if r.cfg == nil {
		return errors.New("rk kernel not initialized")
	}
	copy(r.y, y)
	if err := r.cfg.Rhs.Eval(t, r.y, r.f); err != nil {
		return err
	}
	r.pendingEvals += 1
	r.t, r.tPrev = t, t
	copy(r.yPrev, r.y)
	copy(r.fPrev, r.f)
	r.steps = 0
	return nil
}

// Step advances by one accepted step, never past tLimit. Rejected
// attempts shrink the step until the error test passes or a fatal limit
// is hit.
func (r *rk) Step(tLimit float64) (res ode.StepResult, err error) {
	if r.cfg == nil {
		err = errors.New("rk kernel not initialized")
		return
	}
	c := r.cfg

	res.RhsEvals = r.pendingEvals
	r.pendingEvals = 0

	if r.steps >= c.MaxStepCount {
		err = &ode.StepError{Code: ode.CodeTooMuchWork}
		return
	}
	r.steps++

	var fails uint
	for {
		res.Attempts++

		h := r.hNext
		clamped := false
		if r.t+h >= tLimit {
			h = tLimit - r.t
			clamped = true
		}

		evals, evalErr := r.attempt(h)
		res.RhsEvals += evals
		if evalErr != nil {
			if !errors.Is(evalErr, ode.ErrRhsRecoverable) {
				err = &ode.StepError{Code: ode.CodeRhsFailure, Cause: evalErr}
				return
			}
			fails++
			if fails > c.MaxStepFailures {
				err = &ode.StepError{Code: ode.CodeRhsFailure, Cause: evalErr}
				return
			}
			r.hNext = 0.5 * h
			if r.hNext < c.MinStepSize {
				err = r.fatal(ode.CodeStepTooSmall)
				return
			}
			continue
		}

		// error quotient against the current weights
		c.Tol.Weights(r.y, r.w)
		if !ode.FiniteWeights(r.w) {
			err = r.fatal(ode.CodeBadWeight)
			return
		}
		relativeError := ode.WeightedRMS(r.yErr, r.w)

		// new step size estimate, teacher's controller
		stepEstimate := 0.9 * math.Exp(-math.Log(1.0e-8+relativeError)/float64(r.Order))
		stepEstimate = h * math.Max(0.2, math.Min(stepEstimate, 2.0))
		if c.MaxStepSize > 0 {
			stepEstimate = math.Min(stepEstimate, c.MaxStepSize)
		}

		if relativeError > 1.0 {
			// reject step
			res.ErrTestFails++
			fails++
			if fails > c.MaxStepFailures {
				err = r.fatal(ode.CodeStepTooSmall)
				return
			}
			if stepEstimate < c.MinStepSize {
				err = r.fatal(ode.CodeStepTooSmall)
				return
			}
			r.hNext = stepEstimate
			continue
		}

		// accept step
		r.tPrev = r.t
		copy(r.yPrev, r.y)
		copy(r.fPrev, r.f)

		if clamped {
			r.t = tLimit
		} else {
			r.t += h
		}
		r.applyStep(h)

		if r.firstStageAsLast {
			copy(r.f, r.ks[r.Stages-1])
		} else {
			if evalErr := c.Rhs.Eval(r.t, r.y, r.f); evalErr != nil {
				err = &ode.StepError{Code: ode.CodeRhsFailure, Cause: evalErr}
				return
			}
			res.RhsEvals++
		}

		if !clamped {
			r.hNext = stepEstimate
		}
		res.T, res.H = r.t, h
		return
	}
}

// attempt computes the stages and the embedded error estimate for a step
// of size h without committing it.
func (r *rk) attempt(h float64) (evals uint, err error) {
	c := r.cfg
	var stg, ic uint
	var id int

	for stg = 1; stg < r.Stages; stg++ {
		tCurrent := r.t + h*r.c[stg]

		for id = 0; id < r.n; id++ {
			r.yTry[id] = r.y[id] + h*r.a[stg][0]*r.f[id]
		}
		for ic = 1; ic < stg; ic++ {
			for id = 0; id < r.n; id++ {
				r.yTry[id] = r.yTry[id] + h*r.a[stg][ic]*r.ks[ic][id]
			}
		}
		if err = c.Rhs.Eval(tCurrent, r.yTry, r.ks[stg]); err != nil {
			return evals, err
		}
		evals++
	}

	for id = 0; id < r.n; id++ {
		r.yErr[id] = h * r.e[0] * r.f[id]
	}
	for stg = 1; stg < r.Stages; stg++ {
		for id = 0; id < r.n; id++ {
			r.yErr[id] = r.yErr[id] + h*r.e[stg]*r.ks[stg][id]
		}
	}
	return evals, nil
}

// applyStep commits the accepted step of size h to y.
func (r *rk) applyStep(h float64) {
	var stg uint
	for id := 0; id < r.n; id++ {
		r.y[id] = r.y[id] + h*r.b[0]*r.f[id]
	}
	for stg = 1; stg < r.Stages; stg++ {
		for id := 0; id < r.n; id++ {
			r.y[id] = r.y[id] + h*r.b[stg]*r.ks[stg][id]
		}
	}
}

func (r *rk) fatal(code ode.ErrorCode) error {
	est := make([]float64, r.n)
	w := make([]float64, r.n)
	copy(est, r.yErr)
	copy(w, r.w)
	return &ode.StepError{
		Code:           code,
		ErrorEstimates: est,
		VarWeights:     w,
	}
}

// Interpolate evaluates the cubic Hermite dense output of the last
// accepted step at time t. Valid for t within the step interval; before
// the first step it returns the initial state.
func (r *rk) Interpolate(t float64, yOut []float64) {
	ode.HermiteInterpolate(t, r.tPrev, r.t, r.yPrev, r.fPrev, r.y, r.f, yOut)
}
