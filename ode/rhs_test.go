package ode

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncEval(t *testing.T) {
	f := Func(func(tt float64, y, dy []float64) {
		dy[0] = -y[0]
	})

	dy := make([]float64, 1)
	require.NoError(t, f.Eval(0, []float64{2.0}, dy))
	assert.Equal(t, -2.0, dy[0])
}

func TestNativeFuncStatus(t *testing.T) {
	var status int32
	var seenUser unsafe.Pointer

	user := new(int)
	nf := NativeFunc{
		Fn: func(tt float64, y, dy []float64, u unsafe.Pointer) int32 {
			dy[0] = 1.0
			seenUser = u
			return status
		},
		User: unsafe.Pointer(user),
	}

	dy := make([]float64, 1)

	status = 0
	require.NoError(t, nf.Eval(0, []float64{0}, dy))
	assert.Equal(t, unsafe.Pointer(user), seenUser)

	status = 2
	err := nf.Eval(0, []float64{0}, dy)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRhsRecoverable))

	status = -1
	err = nf.Eval(0, []float64{0}, dy)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRhsRecoverable))
}

func TestDirectionFilter(t *testing.T) {
	cases := []struct {
		name     string
		dir      Direction
		gLo, gHi float64
		want     bool
	}{
		{"upward crossing, Upwards", Upwards, -1, 1, true},
		{"upward crossing, Downwards", Downwards, -1, 1, false},
		{"upward crossing, AnyDirection", AnyDirection, -1, 1, true},
		{"downward crossing, Upwards", Upwards, 1, -1, false},
		{"downward crossing, Downwards", Downwards, 1, -1, true},
		{"downward crossing, AnyDirection", AnyDirection, 1, -1, true},
		{"no crossing, AnyDirection", AnyDirection, 1, 2, false},
		{"no crossing negative, AnyDirection", AnyDirection, -2, -1, false},
		{"touches zero upward", Upwards, -1, 0, true},
		{"touches zero downward", Downwards, 1, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.dir.triggered(c.gLo, c.gHi))
		})
	}
}
