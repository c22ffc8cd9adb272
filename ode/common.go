package ode

import "math"

// HermiteInterpolate evaluates the cubic Hermite interpolant of a
// completed step [t0, t1] with states y0, y1 and derivatives f0, f1 at
// time t, writing the result to yOut. Kernels use it as their dense
// output for root refinement. A degenerate interval yields y1.
func HermiteInterpolate(t, t0, t1 float64, y0, f0, y1, f1, yOut []float64) {
	h := t1 - t0
	if h <= 0 {
		copy(yOut, y1)
		return
	}
	theta := (t - t0) / h
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	for i := range yOut {
		yOut[i] = h00*y0[i] + h*h10*f0[i] + h01*y1[i] + h*h11*f1[i]
	}
}

// EstimateStepSize guesses an initial step size for a kernel of the
// given order from the state y and derivative f at the initial time,
// using a tolerance-scaled probe of the second derivative.
func EstimateStepSize(t float64, y, f []float64, c *Config, order uint) (float64, error) {
	n := len(y)
	var h, h1, der2, der12 float64

	w := make([]float64, n)
	y2, f2 := make([]float64, n), make([]float64, n)
	c.Tol.Weights(y, w)

	// calculate temp step size
	dnf, dny := 0.0, 0.0
	for id := 0; id < n; id++ {
		dnf = dnf + math.Pow(f[id]*w[id], 2)
		dny = dny + math.Pow(y[id]*w[id], 2)
	}

	if math.Min(dnf, dny) < 1e-10 {
		h = 1.e-6
	} else {
		h = 1.e-2 * math.Sqrt(dny/dnf)
	}
	if c.MaxStepSize > 0 {
		h = math.Min(h, c.MaxStepSize)
	}

	// explicit Euler step
	for id := 0; id < n; id++ {
		y2[id] = y[id] + h*f[id]
	}
	if err := c.Rhs.Eval(t+h, y2, f2); err != nil {
		return 0, err
	}

	der2 = 0.0
	for id := 0; id < n; id++ {
		der2 = der2 + math.Pow((f2[id]-f[id])*w[id], 2)
	}

	// estimate for second derivative
	der2 = math.Sqrt(der2) / h
	der12 = math.Max(der2, math.Sqrt(dnf))

	// calculate initial step size
	if der12 <= 1.e-15 {
		h1 = math.Max(1.e-6, h*1.e-3)
	} else {
		h1 = math.Pow(1.e-2/der12, 1.0/float64(order))
	}
	h = math.Min(1e2*h, h1)
	if c.MaxStepSize > 0 {
		h = math.Min(h, c.MaxStepSize)
	}
	return h, nil
}
