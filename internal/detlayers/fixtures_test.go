package detlayers

import (
	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// stubRing is a ring that only carries a surface.
type stubRing struct {
	surface geom.BoundDisk
}

func (r stubRing) Surface() geom.BoundDisk { return r.surface }
func (r stubRing) BasicComponents() []*Det { return nil }
func (r stubRing) CompatibleDets(trajectory.State, propagation.Propagator, estimator.Estimator) []DetWithState {
	return nil
}

// stubLayer returns a fixed search result and counts searches.
type stubLayer struct {
	surface geom.BoundDisk
	rings   []Ring
	dets    []*Det
	found   []DetWithState
	calls   int
}

func (l *stubLayer) Surface() geom.BoundDisk { return l.surface }
func (l *stubLayer) Rings() []Ring           { return l.rings }
func (l *stubLayer) BasicComponents() []*Det { return l.dets }
func (l *stubLayer) CompatibleDets(trajectory.State, propagation.Propagator, estimator.Estimator) []DetWithState {
	l.calls++
	return l.found
}

// recordingPropagator remembers its targets and delegates to a straight line.
type recordingPropagator struct {
	targets []geom.Surface
	fail    bool
}

func (p *recordingPropagator) Propagate(state trajectory.State, target geom.Surface) trajectory.State {
	p.targets = append(p.targets, target)
	if p.fail {
		return trajectory.Invalid()
	}
	return propagation.NewStraightLine(propagation.AnyDirection).Propagate(state, target)
}

func disk(z, thickness, rin, rout float64) geom.BoundDisk {
	return geom.NewBoundDisk(r3.Vec{Z: z}, geom.NewDiskBounds(rin, rout, -thickness/2, thickness/2))
}

func module(id uint32, x, y, z float64) *Det {
	return NewDet(id, geom.NewBoundPlane(r3.Vec{X: x, Y: y, Z: z},
		geom.RectangleBounds{HalfWidth: 5, HalfLength: 5, HalfThickness: 0.1}))
}

func found(ids ...uint32) []DetWithState {
	out := make([]DetWithState, 0, len(ids))
	for _, id := range ids {
		out = append(out, DetWithState{Det: module(id, 0, 0, 300), State: trajectory.Invalid()})
	}
	return out
}

func detIDs(dets []DetWithState) []uint32 {
	ids := make([]uint32, 0, len(dets))
	for _, d := range dets {
		ids = append(ids, d.Det.ID())
	}
	return ids
}

// stubPair returns front and back stubs at z=300 and z=302, r in [30, 100].
func stubPair() (*stubLayer, *stubLayer) {
	front := &stubLayer{surface: disk(300, 1, 30, 100), dets: []*Det{module(1, 40, 0, 300)}}
	back := &stubLayer{surface: disk(302, 1, 30, 100), dets: []*Det{module(2, 40, 0, 302)}}
	return front, back
}

func ring(t interface{ Fatalf(string, ...any) }, dets ...*Det) Ring {
	r, err := NewDetRing(dets)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	return r
}

func ringLayer(t interface{ Fatalf(string, ...any) }, rings ...Ring) *RingLayer {
	l, err := NewRingLayer(rings)
	if err != nil {
		t.Fatalf("ring layer: %v", err)
	}
	return l
}

func testEstimator() estimator.Estimator {
	return estimator.NewSwitching(30, estimator.DefaultNSigma)
}
