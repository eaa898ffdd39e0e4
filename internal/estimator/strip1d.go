package estimator

import (
	"math"

	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
)

// Strip1D compares the predicted state with a single-strip hit along the
// strip's measurement axis only.
type Strip1D struct {
	base
}

// NewStrip1D returns a Strip1D estimator.
func NewStrip1D(maxChi2, nSigma float64) *Strip1D {
	return &Strip1D{base{maxChi2: maxChi2, nSigma: nSigma}}
}

// Estimate implements Estimator. Hits that are not one-dimensional strips
// are rejected with a zero chi-square.
func (s *Strip1D) Estimate(state trajectory.State, hit hits.Hit) (bool, float64) {
	if !state.IsValid() || hit.Kind != hits.KindStrip {
		return false, 0
	}
	chi2, ok := chi2Strip(state, hit)
	if !ok {
		return false, 0
	}
	return s.result(chi2)
}

// Clone implements Estimator.
func (s *Strip1D) Clone() Estimator {
	cp := *s
	return &cp
}

func chi2Strip(state trajectory.State, hit hits.Hit) (float64, bool) {
	phi := hit.StripAngle
	c, sn := math.Cos(phi), math.Sin(phi)
	pred := state.LocalPosition()
	du := c*(hit.Position.X-pred.X) + sn*(hit.Position.Y-pred.Y)
	vu := hit.Error.Project(phi) + state.LocalPositionError().Project(phi)
	if vu <= 0 {
		return 0, false
	}
	return du * du / vu, true
}
