package estimator

import (
	"math"
	"testing"

	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var testPlane = geom.NewBoundPlane(r3.Vec{X: 50, Z: 300}, geom.RectangleBounds{HalfWidth: 2, HalfLength: 2, HalfThickness: 0.1})

func stateAt(x, y float64, err *trajectory.LocalError) trajectory.State {
	return trajectory.New(testPlane, r3.Vec{X: 50 + x, Y: y, Z: 300}, r3.Vec{Z: 1}, err)
}

var hitErr = trajectory.LocalError{XX: 0.01, YY: 0.01}

// fixedEstimator reports a constant chi-square and records how often it
// was asked.
type fixedEstimator struct {
	base
	chi2  float64
	calls *int
}

func (f *fixedEstimator) Estimate(trajectory.State, hits.Hit) (bool, float64) {
	if f.calls != nil {
		*f.calls++
	}
	return f.result(f.chi2)
}

func (f *fixedEstimator) Clone() Estimator {
	cp := *f
	return &cp
}

func newFixed(chi2 float64, calls *int) *fixedEstimator {
	return &fixedEstimator{base: base{maxChi2: 10, nSigma: 3}, chi2: chi2, calls: calls}
}

func TestChi2TwoDimensional(t *testing.T) {
	t.Parallel()
	est := NewChi2(30, DefaultNSigma)
	hit := hits.NewPixel(1, geom.LocalPoint{X: 0.1, Y: 0.2}, hitErr)

	ok, chi2 := est.Estimate(stateAt(0, 0, nil), hit)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, chi2, 1e-9)

	// state error adds to the hit error
	ok, chi2 = est.Estimate(stateAt(0, 0, &trajectory.LocalError{XX: 0.01, YY: 0.01}), hit)
	assert.True(t, ok)
	assert.InDelta(t, 2.5, chi2, 1e-9)
}

func TestChi2Correlated(t *testing.T) {
	t.Parallel()
	est := NewChi2(30, DefaultNSigma)
	hit := hits.NewPixel(1, geom.LocalPoint{X: 1, Y: 1}, trajectory.LocalError{XX: 2, XY: 1, YY: 2})

	// V^-1 = 1/3 [[2 -1] [-1 2]] so r^T V^-1 r = (2 - 2 + 2)/3
	_, chi2 := est.Estimate(stateAt(0, 0, nil), hit)
	assert.InDelta(t, 2.0/3.0, chi2, 1e-9)
}

func TestChi2Cut(t *testing.T) {
	t.Parallel()
	est := NewChi2(4, DefaultNSigma)
	ok, chi2 := est.Estimate(stateAt(0, 0, nil), hits.NewPixel(1, geom.LocalPoint{X: 0.3}, hitErr))
	assert.False(t, ok)
	assert.InDelta(t, 9.0, chi2, 1e-9)
}

func TestChi2SingularCovariance(t *testing.T) {
	t.Parallel()
	est := NewChi2(30, DefaultNSigma)
	ok, chi2 := est.Estimate(stateAt(0, 0, nil), hits.Hit{Kind: hits.KindPixel, Position: geom.LocalPoint{X: 1}})
	assert.False(t, ok)
	assert.Zero(t, chi2)
}

func TestChi2InvalidState(t *testing.T) {
	t.Parallel()
	ok, chi2 := NewChi2(30, 3).Estimate(trajectory.Invalid(), hits.NewPixel(1, geom.LocalPoint{}, hitErr))
	assert.False(t, ok)
	assert.Zero(t, chi2)
}

func TestStrip1D(t *testing.T) {
	t.Parallel()
	est := NewStrip1D(30, DefaultNSigma)

	// only the x residual is measured at angle 0
	ok, chi2 := est.Estimate(stateAt(0, 0, nil), hits.NewStrip(1, geom.LocalPoint{X: 0.1, Y: 5}, 0.01, 0))
	assert.True(t, ok)
	assert.InDelta(t, 1.0, chi2, 1e-9)

	// rotated strip measures y
	_, chi2 = est.Estimate(stateAt(0, 0, nil), hits.NewStrip(1, geom.LocalPoint{X: 5, Y: 0.2}, 0.01, math.Pi/2))
	assert.InDelta(t, 4.0, chi2, 1e-9)

	ok, chi2 = est.Estimate(stateAt(0, 0, nil), hits.NewPixel(1, geom.LocalPoint{}, hitErr))
	assert.False(t, ok)
	assert.Zero(t, chi2)
}

func TestSwitchingRoutesByKind(t *testing.T) {
	t.Parallel()
	est := NewSwitching(30, DefaultNSigma)
	state := stateAt(0, 0, nil)
	pos := geom.LocalPoint{X: 0.1, Y: 0.2}

	_, pixelChi2 := est.Estimate(state, hits.NewPixel(1, pos, hitErr))
	_, matchedChi2 := est.Estimate(state, hits.NewMatchedStrip(1, pos, hitErr))
	_, stripChi2 := est.Estimate(state, hits.NewStrip(1, pos, 0.01, 0))

	assert.InDelta(t, 5.0, pixelChi2, 1e-9)
	assert.InDelta(t, 5.0, matchedChi2, 1e-9)
	assert.InDelta(t, 1.0, stripChi2, 1e-9)

	ok, chi2 := est.Estimate(state, hits.Hit{Kind: hits.Kind(42)})
	assert.False(t, ok)
	assert.Zero(t, chi2)
}

func TestSwitchingForwardsSubEstimator(t *testing.T) {
	t.Parallel()
	var localCalls, stripCalls int
	state := stateAt(0, 0, nil)
	pixel := hits.NewPixel(1, geom.LocalPoint{}, hitErr)
	strip := hits.NewStrip(1, geom.LocalPoint{}, 0.01, 0)

	est := NewSwitchingWith(10, 3, newFixed(7, &localCalls), newFixed(9, &stripCalls))
	ok, chi2 := est.Estimate(state, pixel)
	assert.True(t, ok)
	assert.Equal(t, 7.0, chi2)
	ok, chi2 = est.Estimate(state, strip)
	assert.True(t, ok)
	assert.Equal(t, 9.0, chi2)
	assert.Equal(t, 1, localCalls)
	assert.Equal(t, 1, stripCalls)

	// swapping the 1D estimator only changes the strip answer
	swapped := NewSwitchingWith(10, 3, newFixed(7, nil), newFixed(11, nil))
	_, chi2 = swapped.Estimate(state, pixel)
	assert.Equal(t, 7.0, chi2)
	ok, chi2 = swapped.Estimate(state, strip)
	assert.False(t, ok)
	assert.Equal(t, 11.0, chi2)
}

func TestSwitchingClone(t *testing.T) {
	t.Parallel()
	orig := NewSwitching(25, 2.5)
	cloned, ok := orig.Clone().(*Switching)
	require.True(t, ok)

	assert.NotSame(t, orig, cloned)
	assert.NotSame(t, orig.local, cloned.local)
	assert.NotSame(t, orig.strip, cloned.strip)
	assert.Equal(t, 25.0, cloned.MaxChi2())
	assert.Equal(t, 2.5, cloned.NSigma())
	assert.Equal(t, 25.0, cloned.local.MaxChi2())
	assert.Equal(t, 2.5, cloned.strip.NSigma())

	hit := hits.NewPixel(1, geom.LocalPoint{X: 0.1}, hitErr)
	ok1, c1 := orig.Estimate(stateAt(0, 0, nil), hit)
	ok2, c2 := cloned.Estimate(stateAt(0, 0, nil), hit)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, c1, c2)
}

func TestEstimateSurface(t *testing.T) {
	t.Parallel()
	est := NewChi2(30, 3)

	assert.True(t, est.EstimateSurface(stateAt(1, 1, nil), testPlane))
	assert.False(t, est.EstimateSurface(stateAt(2.2, 0, nil), testPlane))
	// 3 sigma of 0.1 covers the overshoot
	assert.True(t, est.EstimateSurface(stateAt(2.2, 0, &trajectory.LocalError{XX: 0.01, YY: 0.01}), testPlane))
	assert.False(t, est.EstimateSurface(trajectory.Invalid(), testPlane))

	dx, dy := est.MaximalLocalDisplacement(stateAt(0, 0, &trajectory.LocalError{XX: 0.04, YY: 0.09}), testPlane)
	assert.InDelta(t, 0.6, dx, 1e-12)
	assert.InDelta(t, 0.9, dy, 1e-12)
}

func TestProbability(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 1.0, Probability(0, 2), 1e-12)
	assert.InDelta(t, math.Exp(-1), Probability(2, 2), 1e-9)
	assert.Zero(t, Probability(1, 0))
}
