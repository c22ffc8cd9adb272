package ode

import (
	"errors"
	"fmt"
)

// Solve integrates the problem with the given stepping kernel.
//
// On success it returns the Solution; the returned error is then nil.
// Configuration errors are rejected before any stepping begins and come
// back as plain errors. A fatal stepping failure or an exhausted event
// budget comes back as an *ErrorReport (recover it with errors.As),
// which always carries the partial trajectory accumulated so far.
// A triggered StopSolver event is a success, not a failure.
func Solve(p *Problem, k Stepper) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	n := p.Dim()
	cfg := p.config()
	if err := cfg.ValidateAndPrepare(n); err != nil {
		return nil, err
	}

	t := p.SolTimes[0]
	y := make([]float64, n)
	copy(y, p.Y0)

	tr := newTrajectory(n, len(p.SolTimes)+p.MaxEvents)
	tr.append(t, y)

	var diag Diagnostics
	events := newEventTracker(p.Events, n)
	events.prime(t, y)

	if err := k.Init(t, y, cfg); err != nil {
		return nil, failure(err, diag, tr)
	}

	recorded := 0
	yEvent := make([]float64, n)

	for _, target := range p.SolTimes[1:] {
		for t < target {
			res, err := k.Step(target)
			if err != nil {
				return nil, failure(err, diag, tr)
			}
			diag.accumulate(res)
			tPrev := t
			t = res.T
			k.Interpolate(t, y)

			tE, idxs, found := events.scan(k, tPrev, t)
			if !found {
				continue
			}

			// Freeze the step at the crossing and apply the triggered
			// events in declaration order. A recorded event shows up as
			// two rows with the same timestamp, the state before and
			// after its update, so the discontinuity is preserved in
			// the output.
			k.Interpolate(tE, yEvent)
			stop := false
			for _, i := range idxs {
				spec := &p.Events[i]
				if spec.Record {
					recorded++
					if recorded > p.MaxEvents {
						diag.MaxEventsReached = true
						return nil, failure(&StepError{Code: CodeMaxEvents}, diag, tr)
					}
					tr.append(tE, yEvent)
				}
				if spec.Update != nil {
					upd := spec.Update(tE, yEvent)
					if len(upd) != n {
						return nil, fmt.Errorf("event %d update returned %d components, system has %d", i, len(upd), n)
					}
					copy(yEvent, upd)
				}
				if spec.Record {
					tr.append(tE, yEvent)
				}
				if spec.StopSolver {
					stop = true
				}
			}
			if stop {
				// the grid has to end with the state the solve stopped
				// in, which a later update may have changed after the
				// last recorded row
				if !tr.lastRowMatches(tE, yEvent) {
					tr.append(tE, yEvent)
				}
				return tr.solution(diag), nil
			}

			// resume from the updated state
			t = tE
			copy(y, yEvent)
			events.prime(t, y)
			if err := k.Reset(t, y); err != nil {
				return nil, failure(err, diag, tr)
			}
		}
		tr.append(target, y)
	}

	return tr.solution(diag), nil
}

// failure assembles the structured report for a fatal stepping failure,
// preserving all partial progress.
func failure(err error, diag Diagnostics, tr *trajectory) error {
	rep := &ErrorReport{
		Code:    CodeRhsFailure,
		Partial: tr.withTime(),
		Diag:    diag,
	}
	var se *StepError
	if errors.As(err, &se) {
		rep.Code = se.Code
		rep.ErrorEstimates = se.ErrorEstimates
		rep.VarWeights = se.VarWeights
	}
	return rep
}
