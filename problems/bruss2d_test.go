package problems

import "testing"

func TestConstructor(t *testing.T) {
	b := NewBruss2D(2000).(*brusselator)
	if b.a != 3.4 {
		t.Error("Wrong Constant")
	}
}

func TestInitializeLayout(t *testing.T) {
	b := NewBruss2D(10).(*brusselator)
	yT := b.Initialize()

	if len(yT) != 200 {
		t.Fatalf("Expected 200 components, got %d", len(yT))
	}
	// corner cell (0, 0): u0 = 2, v0 = 1
	if yT[0] != 2.0 || yT[1] != 1.0 {
		t.Errorf("Wrong corner cell: u = %f, v = %f", yT[0], yT[1])
	}
}

func TestFcnMatchesRate(t *testing.T) {
	b := NewBruss2D(20).(*brusselator)
	yT := b.Initialize()
	dy := make([]float64, len(yT))

	b.Fcn(0, yT, dy)

	for _, i := range []int{0, 19, 200, 399} {
		du, dv := b.Rate(i)
		if dy[2*i] != du || dy[2*i+1] != dv {
			t.Errorf("Fcn and Rate disagree at cell %d", i)
		}
	}
}
