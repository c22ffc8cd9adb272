package ode

import (
	"errors"
	"fmt"
)

// Problem is a complete initial value problem: the system, its starting
// state, the times at which the solution is requested, the error control
// and the monitored event conditions. A Problem is built once by the
// caller and read-only during the solve.
type Problem struct {
	// Rhs is the right hand side of y'(t) = f(t, y(t))
	Rhs Rhs

	// Jacobian, if non-nil, is handed to implicit kernels; nil selects
	// the kernel's internal finite-difference approximation
	Jacobian Jacobian

	// Y0 is the initial state; its length fixes the state dimension
	Y0 []float64

	// SolTimes are the requested solution times, strictly increasing.
	// The first entry is the initial time.
	SolTimes []float64

	Tol Tolerances

	// Events lists the monitored conditions in declaration order, which
	// also breaks ties between simultaneous crossings
	Events []EventSpec

	// MaxEvents bounds the number of recorded events; exceeding it is a
	// fatal failure, not a silent truncation
	MaxEvents int

	// Kernel tuning, all optional (zero selects the kernel default)
	InitialStepSize float64
	MinStepSize     float64
	MaxStepSize     float64
	MaxStepCount    uint
	MaxStepFailures uint
}

// Dim returns the state dimension.
func (p *Problem) Dim() int { return len(p.Y0) }

func (p *Problem) validate() error {
	if p.Rhs == nil {
		return errNoRhs
	}
	if len(p.Y0) == 0 {
		return errors.New("empty initial state")
	}
	if len(p.SolTimes) == 0 {
		return errors.New("no solution times requested")
	}
	for i := 1; i < len(p.SolTimes); i++ {
		if p.SolTimes[i] <= p.SolTimes[i-1] {
			return fmt.Errorf("solution times must be strictly increasing, entry %d is not", i)
		}
	}
	if p.MaxEvents < 0 {
		return errors.New("maximum event count must not be negative")
	}
	for i := range p.Events {
		if p.Events[i].Condition == nil {
			return fmt.Errorf("event %d has no condition function", i)
		}
	}
	return p.Tol.Validate(len(p.Y0))
}

// config assembles the kernel configuration for one solve.
func (p *Problem) config() *Config {
	return &Config{
		InitialStepSize: p.InitialStepSize,
		MinStepSize:     p.MinStepSize,
		MaxStepSize:     p.MaxStepSize,
		MaxStepCount:    p.MaxStepCount,
		MaxStepFailures: p.MaxStepFailures,
		Tol:             p.Tol,
		Rhs:             p.Rhs,
		Jacobian:        p.Jacobian,
	}
}
