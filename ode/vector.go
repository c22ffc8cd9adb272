package ode

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AsVector wraps a state buffer as a gonum vector without copying. The
// view aliases y; it stays valid only as long as the caller owns y.
func AsVector(y []float64) *mat.VecDense {
	return mat.NewVecDense(len(y), y)
}

// Row returns a borrowed view of the i-th trajectory row. The slice
// aliases the solution matrix and must not be resized.
func (s *Solution) Row(i int) []float64 {
	return s.Y.RawRowView(i)
}

// trajectory accumulates the output grid row by row in one contiguous
// buffer, so freezing it into the result matrix is zero-copy. Rows are
// only ever appended, never removed.
type trajectory struct {
	n    int
	ts   []float64
	data []float64
}

func newTrajectory(n, rowHint int) *trajectory {
	return &trajectory{
		n:    n,
		ts:   make([]float64, 0, rowHint),
		data: make([]float64, 0, rowHint*n),
	}
}

func (tr *trajectory) append(t float64, y []float64) {
	tr.ts = append(tr.ts, t)
	tr.data = append(tr.data, y...)
}

// lastRowMatches reports whether the most recent row equals the given
// time and state exactly.
func (tr *trajectory) lastRowMatches(t float64, y []float64) bool {
	if len(tr.ts) == 0 {
		return false
	}
	return tr.ts[len(tr.ts)-1] == t &&
		floats.Equal(tr.data[len(tr.data)-tr.n:], y)
}

// solution freezes the accumulated rows into a Solution, transferring
// ownership of the buffers to the result.
func (tr *trajectory) solution(diag Diagnostics) *Solution {
	return &Solution{
		Ts:   tr.ts,
		Y:    mat.NewDense(len(tr.ts), tr.n, tr.data),
		Diag: diag,
	}
}

// withTime copies the rows into the failure-report shape, the time as
// first column followed by the state components.
func (tr *trajectory) withTime() *mat.Dense {
	rows := len(tr.ts)
	flat := make([]float64, rows*(tr.n+1))
	for i, t := range tr.ts {
		row := flat[i*(tr.n+1):]
		row[0] = t
		copy(row[1:tr.n+1], tr.data[i*tr.n:(i+1)*tr.n])
	}
	return mat.NewDense(rows, tr.n+1, flat)
}
