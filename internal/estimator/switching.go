package estimator

import (
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
)

// Switching routes pixel and matched-strip hits to a two-dimensional
// estimator and single-strip hits to a one-dimensional one. Both share the
// same chi-square cut and sigma multiplier.
type Switching struct {
	base
	local Estimator
	strip Estimator
}

// NewSwitching builds a Switching estimator over a Chi2 and a Strip1D
// configured with maxChi2 and nSigma.
func NewSwitching(maxChi2, nSigma float64) *Switching {
	return NewSwitchingWith(maxChi2, nSigma, NewChi2(maxChi2, nSigma), NewStrip1D(maxChi2, nSigma))
}

// NewSwitchingWith builds a Switching estimator over caller-supplied
// sub-estimators. The estimators are cloned.
func NewSwitchingWith(maxChi2, nSigma float64, local, strip Estimator) *Switching {
	return &Switching{
		base:  base{maxChi2: maxChi2, nSigma: nSigma},
		local: local.Clone(),
		strip: strip.Clone(),
	}
}

// Estimate implements Estimator. The sub-estimator's answer is returned
// unchanged; hits of unknown kind are incompatible.
func (s *Switching) Estimate(state trajectory.State, hit hits.Hit) (bool, float64) {
	switch hit.Kind {
	case hits.KindPixel, hits.KindMatchedStrip:
		return s.local.Estimate(state, hit)
	case hits.KindStrip:
		return s.strip.Estimate(state, hit)
	default:
		return false, 0
	}
}

// Clone implements Estimator with a deep copy of both sub-estimators.
func (s *Switching) Clone() Estimator {
	return &Switching{
		base:  s.base,
		local: s.local.Clone(),
		strip: s.strip.Clone(),
	}
}
