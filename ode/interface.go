package ode

import "gonum.org/v1/gonum/mat"

// Jacobian evaluates the dense Jacobian df/dy at (t, y) into jac.
// It is optional: a nil Jacobian tells the kernel to fall back to an
// internal finite-difference approximation.
type Jacobian func(t float64, y []float64, jac *mat.Dense)

// Config carries the solver configuration handed to a stepping kernel.
type Config struct {
	// InitialStepSize, if > 0.0 specifies the step size
	// to be used in the first integration step
	// Else, the kernel estimates one from the problem
	InitialStepSize float64

	// MinStepSize, if > 0.0 specifies the minimal size of a processing step
	// processing will abort, if this value could not be reached
	MinStepSize float64

	// MaxStepSize if > 0.0 specifies the maximum size of a processing step
	MaxStepSize float64

	// MaxStepCount if > 0 specifies the maximum number of steps the kernel
	// will attempt between two Init/Reset points before aborting
	MaxStepCount uint

	// MaxStepFailures if > 0 bounds the consecutive rejected attempts
	// (error test failures and recoverable evaluation failures) within
	// one step before the kernel gives up
	MaxStepFailures uint

	// Tol drives the per-component error weighting
	Tol Tolerances

	// Rhs is the right hand side of the differential equation
	// y'(t) = f(t, y(t))
	Rhs Rhs

	// Jacobian is consulted by implicit kernels only, may be nil
	Jacobian Jacobian
}

// ValidateAndPrepare checks the configuration against a system of n
// components and fills in the kernel defaults for unset values.
func (c *Config) ValidateAndPrepare(n int) error {
	if c.Rhs == nil {
		return errNoRhs
	}
	if err := c.Tol.Validate(n); err != nil {
		return err
	}
	if c.MinStepSize <= 0.0 {
		c.MinStepSize = 1e-12
	}
	if c.MaxStepCount == 0 {
		c.MaxStepCount = 1000000
	}
	if c.MaxStepFailures == 0 {
		c.MaxStepFailures = 10
	}
	return nil
}

// StepResult reports one accepted step together with the work counters
// accumulated while computing it.
type StepResult struct {
	// T is the time reached by the step, H its size
	T, H float64

	// Attempts counts the tries for this step including the accepted one
	Attempts uint

	RhsEvals         uint
	RhsEvalsImplicit uint
	ErrTestFails     uint
	LinSolveSetups   uint
	NonlinIters      uint
	NonlinConvFails  uint
	JacEvals         uint
}

// StepError is the fatal failure of a kernel step. It freezes the local
// error estimate and the error weights in effect so the caller can see
// which component drove the rejection.
type StepError struct {
	Code           ErrorCode
	ErrorEstimates []float64
	VarWeights     []float64
	Cause          error
}

func (e *StepError) Error() string {
	if e.Cause != nil {
		return e.Code.String() + ": " + e.Cause.Error()
	}
	return e.Code.String()
}

func (e *StepError) Unwrap() error { return e.Cause }

// Stepper is the single-step contract between the integration driver and
// a stepping kernel.
//
// Init starts a fresh integration segment at (t, y); Reset restarts one
// after the driver modified the state, typically at an event. The kernel
// keeps its own copy of y, the caller's buffer is not retained.
//
// Step advances by one accepted step, never past tLimit. After a
// successful Step, Interpolate evaluates the dense output anywhere inside
// the just-completed step interval.
type Stepper interface {
	Info() StepperInfo
	Init(t float64, y []float64, c *Config) error
	Step(tLimit float64) (StepResult, error)
	Interpolate(t float64, yOut []float64)
	Reset(t float64, y []float64) error
}

type StepperInfo struct {
	Name          string
	Stages, Order uint
	Implicit      bool
}

func (i *StepperInfo) Info() StepperInfo {
	return *i
}
