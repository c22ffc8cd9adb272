package ode

import "math"

// Direction filters which sign transitions of an event condition count
// as a trigger.
type Direction int

const (
	// AnyDirection triggers on either sign change
	AnyDirection Direction = iota
	// Upwards triggers on a negative to positive transition
	Upwards
	// Downwards triggers on a positive to negative transition
	Downwards
)

func (d Direction) triggered(gLo, gHi float64) bool {
	switch d {
	case Upwards:
		return gLo < 0 && gHi >= 0
	case Downwards:
		return gLo > 0 && gHi <= 0
	default:
		return (gLo < 0 && gHi >= 0) || (gLo > 0 && gHi <= 0)
	}
}

// EventSpec describes one monitored scalar condition. A trigger is a
// zero-crossing of Condition along the trajectory that matches
// Direction.
type EventSpec struct {
	// Condition is the monitored scalar function of time and state
	Condition func(t float64, y []float64) float64

	Direction Direction

	// Update, if non-nil, replaces the state at the event time; it must
	// return a vector of the same dimension. nil is the identity.
	Update func(t float64, y []float64) []float64

	// StopSolver terminates the solve at the event time, as a success
	StopSolver bool

	// Record appends the event as a duplicate-timestamp row of the output
	// and counts it against Problem.MaxEvents
	Record bool
}

const ulp = 2.220446049250313e-16

// rootSamples is the number of dense-output subintervals inspected per
// accepted step, so crossings that reverse within a step are not missed.
const rootSamples = 4

// eventTracker runs the per-step crossing search: scan the step interval
// for sign changes, bisect each candidate down to the root tolerance,
// keep the earliest crossing plus everything simultaneous with it.
type eventTracker struct {
	specs []EventSpec
	gLo   []float64 // condition values at the left end of the live segment
	gHi   []float64
	tRoot []float64
	yMid  []float64
}

func newEventTracker(specs []EventSpec, n int) *eventTracker {
	return &eventTracker{
		specs: specs,
		gLo:   make([]float64, len(specs)),
		gHi:   make([]float64, len(specs)),
		tRoot: make([]float64, len(specs)),
		yMid:  make([]float64, n),
	}
}

// prime evaluates all conditions at the start of a fresh segment, after
// Init or after an event modified the state.
func (e *eventTracker) prime(t float64, y []float64) {
	for i := range e.specs {
		e.gLo[i] = e.specs[i].Condition(t, y)
	}
}

// rootTol is the time resolution of the crossing search, the CVODE
// convention of 100 ulps at the scale of the step.
func rootTol(tLo, tHi float64) float64 {
	return 100 * ulp * (math.Abs(tHi) + (tHi - tLo))
}

// scan inspects the just-completed step (tLo, tHi] for crossings. When
// it reports none it has advanced the tracker to tHi; when it reports a
// crossing the caller applies the event and must prime the tracker again
// at the restart point.
//
// tE is the refined crossing time; idxs holds every spec crossing within
// the root tolerance of tE, in declaration order.
func (e *eventTracker) scan(k Stepper, tLo, tHi float64) (tE float64, idxs []int, found bool) {
	if len(e.specs) == 0 {
		return 0, nil, false
	}

	ttol := rootTol(tLo, tHi)
	a := tLo
	for s := 1; s <= rootSamples; s++ {
		b := tLo + (tHi-tLo)*float64(s)/rootSamples
		if s == rootSamples {
			b = tHi
		}
		k.Interpolate(b, e.yMid)
		for i := range e.specs {
			e.gHi[i] = e.specs[i].Condition(b, e.yMid)
		}

		tE = math.Inf(1)
		for i := range e.specs {
			e.tRoot[i] = math.Inf(1)
			if e.specs[i].Direction.triggered(e.gLo[i], e.gHi[i]) {
				e.tRoot[i] = e.refine(k, i, a, b, e.gLo[i])
				if e.tRoot[i] < tE {
					tE = e.tRoot[i]
				}
			}
		}
		if !math.IsInf(tE, 1) {
			for i := range e.specs {
				if e.tRoot[i] <= tE+ttol {
					idxs = append(idxs, i)
				}
			}
			return tE, idxs, true
		}

		a = b
		copy(e.gLo, e.gHi)
	}
	return 0, nil, false
}

// refine bisects the bracket [a, b] down to the root tolerance and
// returns the right end of the final bracket, so the reported time lies
// on the far side of the crossing.
func (e *eventTracker) refine(k Stepper, i int, a, b, ga float64) float64 {
	ttol := rootTol(a, b)
	for b-a > ttol {
		m := 0.5 * (a + b)
		k.Interpolate(m, e.yMid)
		gm := e.specs[i].Condition(m, e.yMid)
		if e.specs[i].Direction.triggered(ga, gm) {
			b = m
		} else {
			a, ga = m, gm
		}
	}
	return b
}
