package estimator

import (
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/mat"
)

// Chi2 is the general estimator: a full 2x2 chi-square for two-dimensional
// hits and a projected one-dimensional chi-square for strip hits.
type Chi2 struct {
	base
}

// NewChi2 returns a Chi2 estimator with the given cut and sigma multiplier.
func NewChi2(maxChi2, nSigma float64) *Chi2 {
	return &Chi2{base{maxChi2: maxChi2, nSigma: nSigma}}
}

// Estimate implements Estimator.
func (c *Chi2) Estimate(state trajectory.State, hit hits.Hit) (bool, float64) {
	if !state.IsValid() {
		return false, 0
	}
	switch hit.Dimension() {
	case 2:
		chi2, ok := chi2Local(state, hit)
		if !ok {
			return false, 0
		}
		return c.result(chi2)
	case 1:
		chi2, ok := chi2Strip(state, hit)
		if !ok {
			return false, 0
		}
		return c.result(chi2)
	default:
		return false, 0
	}
}

// Clone implements Estimator.
func (c *Chi2) Clone() Estimator {
	cp := *c
	return &cp
}

// chi2Local computes r^T V^-1 r with V the sum of hit and state errors.
func chi2Local(state trajectory.State, hit hits.Hit) (float64, bool) {
	pred := state.LocalPosition()
	r := mat.NewVecDense(2, []float64{hit.Position.X - pred.X, hit.Position.Y - pred.Y})
	v := hit.Error.Add(state.LocalPositionError()).SymDense()

	var chol mat.Cholesky
	if ok := chol.Factorize(v); !ok {
		return 0, false
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, r); err != nil {
		return 0, false
	}
	return mat.Dot(r, &x), true
}
