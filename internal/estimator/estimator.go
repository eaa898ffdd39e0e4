// Package estimator decides whether a predicted trajectory state is
// compatible with a surface or with a reconstructed hit.
package estimator

import (
	"math"

	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultNSigma is the tolerance multiplier used when none is configured.
const DefaultNSigma = 3.0

// Estimator is the measurement-estimator contract shared by every
// implementation. Implementations are immutable and safe for concurrent use.
type Estimator interface {
	// Estimate returns whether hit is compatible with state, and the
	// chi-square of the comparison.
	Estimate(state trajectory.State, hit hits.Hit) (bool, float64)
	// EstimateSurface reports whether state may cross surface within
	// NSigma of its positional error.
	EstimateSurface(state trajectory.State, surface geom.Surface) bool
	// MaximalLocalDisplacement is the NSigma tolerance along local x and y.
	MaximalLocalDisplacement(state trajectory.State, surface geom.Surface) (float64, float64)
	MaxChi2() float64
	NSigma() float64
	// Clone returns an independent copy.
	Clone() Estimator
}

// base carries the cut values and the surface test common to all
// chi-square estimators.
type base struct {
	maxChi2 float64
	nSigma  float64
}

func (b base) MaxChi2() float64 { return b.maxChi2 }
func (b base) NSigma() float64  { return b.nSigma }

func (b base) MaximalLocalDisplacement(state trajectory.State, _ geom.Surface) (float64, float64) {
	if !state.HasError() {
		return 0, 0
	}
	e := state.LocalPositionError()
	return b.nSigma * math.Sqrt(e.XX), b.nSigma * math.Sqrt(e.YY)
}

func (b base) EstimateSurface(state trajectory.State, surface geom.Surface) bool {
	if !state.IsValid() || surface == nil {
		return false
	}
	dx, dy := b.MaximalLocalDisplacement(state, surface)
	return surface.Bounds().InsideTolerance(geom.ToLocal(surface, state.GlobalPosition()), dx, dy)
}

func (b base) result(chi2 float64) (bool, float64) {
	return chi2 <= b.maxChi2, chi2
}

// Probability returns the upper-tail probability of chi2 for ndof degrees of
// freedom.
func Probability(chi2 float64, ndof int) float64 {
	if ndof <= 0 {
		return 0
	}
	return distuv.ChiSquared{K: float64(ndof)}.Survival(chi2)
}
