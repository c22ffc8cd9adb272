package bdf

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"
)

const (
	ulp = 2.220446049250313e-16

	// maxNewtonIters bounds one corrector iteration; newtonTol is the
	// weighted norm the correction has to fall below
	maxNewtonIters = 4
	newtonTol      = 0.1

	// factorization reuse limits
	maxStepsPerLU = 20
	maxStepRatio  = 1.3
)

// New creates an implicit first-order BDF kernel (backward Euler) with a
// modified Newton iteration on a dense LU factorization. The Jacobian
// comes from Config.Jacobian when given, otherwise from an internal
// finite-difference approximation.
func New() ode.Stepper {
	return &bdf{
		StepperInfo: ode.StepperInfo{Name: "BDF1", Stages: 1, Order: 1, Implicit: true},
	}
}

type bdf struct {
	ode.StepperInfo

	cfg *ode.Config
	n   int

	t, tPrev     float64
	y, f         []float64
	yPrev, fPrev []float64
	hNext        float64

	// Newton workspace
	jac     *mat.Dense
	iterMat *mat.Dense // I - h*J
	lu      mat.LU
	luGood  bool
	hLU     float64 // step size the factorization was built for
	luSteps uint    // accepted steps since the last factorization

	yc, yPred, g, delta, w, yErr, fd []float64

	steps        uint
	pendingEvals uint
}

func (b *bdf) Init(t float64, y []float64, c *ode.Config) error {
	n := len(y)
	if err := c.ValidateAndPrepare(n); err != nil {
		return err
	}

	b.cfg = c
	b.n = n
	b.y = append(b.y[:0], y...)
	b.yPrev = append(b.yPrev[:0], y...)
	b.f = make([]float64, n)
	b.fPrev = make([]float64, n)
	b.yc = make([]float64, n)
	b.yPred = make([]float64, n)
	b.g = make([]float64, n)
	b.delta = make([]float64, n)
	b.w = make([]float64, n)
	b.yErr = make([]float64, n)
	b.fd = make([]float64, n)
	b.jac = mat.NewDense(n, n, nil)
	b.iterMat = mat.NewDense(n, n, nil)
	b.luGood = false

	if err := c.Rhs.Eval(t, b.y, b.f); err != nil {
		return err
	}
	b.pendingEvals = 1

	b.t, b.tPrev = t, t
	copy(b.fPrev, b.f)
	b.steps = 0

	b.hNext = c.InitialStepSize
	if b.hNext <= 0.0 {
		h, err := ode.EstimateStepSize(t, b.y, b.f, c, b.Order)
		if err != nil {
			return err
		}
		b.hNext = h
		b.pendingEvals += 2
	}
	return nil
}

func (b *bdf) Reset(t float64, y []float64) error {
	if b.cfg == nil {
		return errors.New("bdf kernel not initialized")
	}
	copy(b.y, y)
	if err := b.cfg.Rhs.Eval(t, b.y, b.f); err != nil {
		return err
	}
	b.pendingEvals++
	b.t, b.tPrev = t, t
	copy(b.yPrev, b.y)
	copy(b.fPrev, b.f)
	b.steps = 0
	b.luGood = false
	return nil
}

func (b *bdf) Step(tLimit float64) (res ode.StepResult, err error) {
	if b.cfg == nil {
		err = errors.New("bdf kernel not initialized")
		return
	}
	c := b.cfg

	res.RhsEvals = b.pendingEvals
	b.pendingEvals = 0

	if b.steps >= c.MaxStepCount {
		err = &ode.StepError{Code: ode.CodeTooMuchWork}
		return
	}
	b.steps++

	c.Tol.Weights(b.y, b.w)
	if !ode.FiniteWeights(b.w) {
		err = b.fatal(ode.CodeBadWeight)
		return
	}

	var fails uint
	forceSetup := false
	for {
		res.Attempts++

		h := b.hNext
		clamped := false
		if b.t+h >= tLimit {
			h = tLimit - b.t
			clamped = true
		}
		tn := b.t + h
		if clamped {
			tn = tLimit
		}

		converged, evalErr := b.corrector(tn, h, forceSetup, &res)
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
			b.hNext = 0.5 * h
			if b.hNext < c.MinStepSize {
				err = b.fatal(ode.CodeStepTooSmall)
				return
			}
			forceSetup = true
			continue
		}
		if !converged {
			res.NonlinConvFails++
			fails++
			if fails > c.MaxStepFailures {
				err = b.fatal(ode.CodeConvergenceFailure)
				return
			}
			if !forceSetup && !b.freshLU(h) {
				// retry once with a fresh Jacobian before shrinking
				forceSetup = true
				continue
			}
			b.hNext = 0.5 * h
			if b.hNext < c.MinStepSize {
				err = b.fatal(ode.CodeConvergenceFailure)
				return
			}
			forceSetup = true
			continue
		}
		forceSetup = false

		// local error estimate from the predictor/corrector difference
		for i := 0; i < b.n; i++ {
			b.yErr[i] = 0.5 * (b.yc[i] - b.yPred[i])
		}
		relativeError := ode.WeightedRMS(b.yErr, b.w)

		stepEstimate := 0.9 * math.Pow(1.0e-8+relativeError, -1.0/float64(b.Order+1))
		stepEstimate = h * math.Max(0.2, math.Min(stepEstimate, 2.0))
		if c.MaxStepSize > 0 {
			stepEstimate = math.Min(stepEstimate, c.MaxStepSize)
		}

		if relativeError > 1.0 {
			res.ErrTestFails++
			fails++
			if fails > c.MaxStepFailures {
				err = b.fatal(ode.CodeStepTooSmall)
				return
			}
			if stepEstimate < c.MinStepSize {
				err = b.fatal(ode.CodeStepTooSmall)
				return
			}
			b.hNext = stepEstimate
			continue
		}

		// accept step
		b.tPrev = b.t
		copy(b.yPrev, b.y)
		copy(b.fPrev, b.f)

		b.t = tn
		copy(b.y, b.yc)
		if evalErr := c.Rhs.Eval(b.t, b.y, b.f); evalErr != nil {
			err = &ode.StepError{Code: ode.CodeRhsFailure, Cause: evalErr}
			return
		}
		res.RhsEvals++
		b.luSteps++

		if !clamped {
			b.hNext = stepEstimate
		}
		res.T, res.H = b.t, h
		return
	}
}

// corrector runs the modified Newton iteration for the step to tn.
func (b *bdf) corrector(tn, h float64, forceSetup bool, res *ode.StepResult) (converged bool, err error) {
	if err = b.setupLU(h, forceSetup, res); err != nil {
		return false, err
	}

	// explicit Euler predictor
	floats.AddScaledTo(b.yPred, b.y, h, b.f)
	copy(b.yc, b.yPred)

	deltaVec := mat.NewVecDense(b.n, b.delta)
	gVec := mat.NewVecDense(b.n, b.g)

	for iter := 0; iter < maxNewtonIters; iter++ {
		res.NonlinIters++

		if err = b.cfg.Rhs.Eval(tn, b.yc, b.fd); err != nil {
			return false, err
		}
		res.RhsEvals++
		res.RhsEvalsImplicit++

		for i := 0; i < b.n; i++ {
			b.g[i] = -(b.yc[i] - b.y[i] - h*b.fd[i])
		}
		if err := b.lu.SolveVecTo(deltaVec, false, gVec); err != nil {
			// singular iteration matrix, treat as non-convergence
			return false, nil
		}
		floats.Add(b.yc, b.delta)
		if ode.WeightedRMS(b.delta, b.w) < newtonTol {
			return true, nil
		}
	}
	return false, nil
}

func (b *bdf) freshLU(h float64) bool {
	return b.luGood && b.hLU == h && b.luSteps == 0
}

// setupLU rebuilds and refactorizes the iteration matrix I - h*J when
// the cached factorization is stale for the step size h. The Jacobian
// is taken at the left end of the step, the modified Newton convention.
func (b *bdf) setupLU(h float64, force bool, res *ode.StepResult) error {
	if b.luGood && !force && b.luSteps < maxStepsPerLU &&
		h/b.hLU < maxStepRatio && b.hLU/h < maxStepRatio {
		return nil
	}

	if b.cfg.Jacobian != nil {
		b.cfg.Jacobian(b.t, b.y, b.jac)
		res.JacEvals++
	} else {
		if err := b.fdJacobian(res); err != nil {
			return err
		}
	}

	b.iterMat.Scale(-h, b.jac)
	for i := 0; i < b.n; i++ {
		b.iterMat.Set(i, i, b.iterMat.At(i, i)+1.0)
	}
	b.lu.Factorize(b.iterMat)
	res.LinSolveSetups++
	b.luGood = true
	b.hLU = h
	b.luSteps = 0
	return nil
}

// fdJacobian approximates J by forward differences, one rhs evaluation
// per column.
func (b *bdf) fdJacobian(res *ode.StepResult) error {
	for j := 0; j < b.n; j++ {
		yj := b.y[j]
		sigma := math.Sqrt(ulp) * math.Max(math.Abs(yj), 1e-5)
		b.y[j] = yj + sigma
		err := b.cfg.Rhs.Eval(b.t, b.y, b.fd)
		b.y[j] = yj
		if err != nil {
			return err
		}
		res.RhsEvals++
		res.RhsEvalsImplicit++
		for i := 0; i < b.n; i++ {
			b.jac.Set(i, j, (b.fd[i]-b.f[i])/sigma)
		}
	}
	return nil
}

func (b *bdf) fatal(code ode.ErrorCode) error {
	est := make([]float64, b.n)
	w := make([]float64, b.n)
	copy(est, b.yErr)
	copy(w, b.w)
	return &ode.StepError{Code: code, ErrorEstimates: est, VarWeights: w}
}

// Interpolate evaluates the cubic Hermite dense output of the last
// accepted step; before the first step it returns the current state.
func (b *bdf) Interpolate(t float64, yOut []float64) {
	ode.HermiteInterpolate(t, b.tPrev, b.t, b.yPrev, b.fPrev, b.y, b.f, yOut)
}
