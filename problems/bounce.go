package problems

import "github.com/idontgetoutmuch/hmatrix-sundials-nova/ode"

// Bounce is the bouncing ball test problem: free fall under gravity,
// state [height, velocity], with an impact event at height zero that
// reflects the velocity scaled by the restitution coefficient.
type Bounce struct {
	G           float64
	Restitution float64
	H0          float64
}

func NewBounce(g, restitution, h0 float64) *Bounce {
	return &Bounce{G: g, Restitution: restitution, H0: h0}
}

func (b *Bounce) Description() string {
	return "bouncing ball"
}

func (b *Bounce) Initialize() []float64 {
	return []float64{b.H0, 0.0}
}

func (b *Bounce) Fcn(t float64, yT []float64, dy_out []float64) {
	dy_out[0] = yT[1]
	dy_out[1] = -b.G
}

// Event is the impact: the height crosses zero downwards and the
// velocity is reflected.
func (b *Bounce) Event(stop, record bool) ode.EventSpec {
	return ode.EventSpec{
		Condition: func(t float64, y []float64) float64 { return y[0] },
		Direction: ode.Downwards,
		Update: func(t float64, y []float64) []float64 {
			return []float64{y[0], -b.Restitution * y[1]}
		},
		StopSolver: stop,
		Record:     record,
	}
}
