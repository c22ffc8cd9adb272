package ode

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var errNoRhs = errors.New("no right hand side given")

// Diagnostics accumulates the work counters of one solve. All counters
// are monotonically non-decreasing while the solve runs; the zero value
// is the empty diagnostics.
type Diagnostics struct {
	// Steps is the number of accepted kernel steps,
	// StepAttempts includes the rejected tries
	Steps        uint
	StepAttempts uint

	// RhsEvals counts derivative evaluations; RhsEvalsImplicit the share
	// spent inside nonlinear iterations of an implicit kernel
	RhsEvals         uint
	RhsEvalsImplicit uint

	LinSolveSetups  uint
	ErrTestFails    uint
	NonlinIters     uint
	NonlinConvFails uint
	JacEvals        uint

	// MaxEventsReached is set when the solve aborted because more events
	// were recorded than Problem.MaxEvents allows
	MaxEventsReached bool
}

func (d *Diagnostics) accumulate(r StepResult) {
	d.Steps++
	d.StepAttempts += r.Attempts
	d.RhsEvals += r.RhsEvals
	d.RhsEvalsImplicit += r.RhsEvalsImplicit
	d.LinSolveSetups += r.LinSolveSetups
	d.ErrTestFails += r.ErrTestFails
	d.NonlinIters += r.NonlinIters
	d.NonlinConvFails += r.NonlinConvFails
	d.JacEvals += r.JacEvals
}

// Solution is the successful result of a solve.
type Solution struct {
	// Ts is the actual time grid: the requested solution times plus two
	// entries per recorded event sharing the event timestamp, one for
	// the state before the update and one after
	Ts []float64

	// Y holds one row per entry of Ts, one column per state component
	Y *mat.Dense

	Diag Diagnostics
}

// ErrorCode classifies a fatal solve failure.
type ErrorCode int

const (
	// CodeStepTooSmall: the error test kept failing until the step size
	// fell below Config.MinStepSize
	CodeStepTooSmall ErrorCode = iota + 1

	// CodeTooMuchWork: Config.MaxStepCount was exhausted before the next
	// requested time was reached
	CodeTooMuchWork

	// CodeConvergenceFailure: the nonlinear iteration of an implicit
	// kernel repeatedly failed to converge
	CodeConvergenceFailure

	// CodeRhsFailure: a right hand side or Jacobian evaluation failed
	// fatally, or kept failing recoverably past Config.MaxStepFailures
	CodeRhsFailure

	// CodeMaxEvents: more events were recorded than Problem.MaxEvents
	CodeMaxEvents

	// CodeBadWeight: an error weight component became non-finite, so the
	// error test could no longer be trusted
	CodeBadWeight
)

func (c ErrorCode) String() string {
	switch c {
	case CodeStepTooSmall:
		return "step size too small"
	case CodeTooMuchWork:
		return "maximum step count exceeded"
	case CodeConvergenceFailure:
		return "nonlinear convergence failure"
	case CodeRhsFailure:
		return "right hand side failure"
	case CodeMaxEvents:
		return "maximum event count exceeded"
	case CodeBadWeight:
		return "non-finite error weight"
	}
	return fmt.Sprintf("unknown error code %d", int(c))
}

// ErrorReport is returned when a solve terminates before the final
// requested time for a non-event reason. It implements error; callers
// recover it with errors.As. Partial progress is never discarded: the
// trajectory accumulated up to the failure is always included.
type ErrorReport struct {
	Code ErrorCode

	// ErrorEstimates and VarWeights are the local error estimate and the
	// error weights in effect at the failing step. Both are either empty
	// or of state dimension; configuration-independent failures (such as
	// the event budget) leave them empty.
	ErrorEstimates []float64
	VarWeights     []float64

	// Partial is the trajectory up to the failure point with the time as
	// first column, one state component per remaining column.
	Partial *mat.Dense

	Diag Diagnostics
}

func (e *ErrorReport) Error() string {
	return fmt.Sprintf("solve aborted (%s) after %d steps", e.Code, e.Diag.Steps)
}
