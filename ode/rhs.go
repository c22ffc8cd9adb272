package ode

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrRhsRecoverable marks a transient right hand side failure.
// Kernels react by shrinking the step and retrying, bounded by
// Config.MaxStepFailures. Any other evaluation error is fatal and
// aborts the solve.
var ErrRhsRecoverable = errors.New("recoverable rhs failure")

// Rhs evaluates the right hand side of the differential equation
// y'(t) = f(t, y(t)).
// Eval writes the derivative into dy, which has the same length as y.
// Implementations must tolerate an unbounded number of calls per step,
// kernels retry internally.
type Rhs interface {
	Eval(t float64, y, dy []float64) error
}

// Func is the in-process variant of Rhs: a plain derivative function
// invoked directly. It cannot report a recoverable failure; a panic in
// user code aborts the whole solve.
type Func func(t float64, y, dy []float64)

func (f Func) Eval(t float64, y, dy []float64) error {
	f(t, y, dy)
	return nil
}

// NativeFunc is the foreign variant of Rhs: a fixed calling signature
// over raw buffers plus an opaque user data pointer that must outlive
// the solve. The returned status follows the usual convention:
// 0 success, positive recoverable (retry with a smaller step),
// negative fatal.
type NativeFunc struct {
	Fn   func(t float64, y, dy []float64, user unsafe.Pointer) int32
	User unsafe.Pointer
}

func (nf NativeFunc) Eval(t float64, y, dy []float64) error {
	switch status := nf.Fn(t, y, dy, nf.User); {
	case status == 0:
		return nil
	case status > 0:
		return fmt.Errorf("rhs returned status %d: %w", status, ErrRhsRecoverable)
	default:
		return fmt.Errorf("rhs returned fatal status %d", status)
	}
}
