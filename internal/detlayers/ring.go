package detlayers

import (
	"fmt"
	"math"

	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/monitoring"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

const ringSubsystem = "detlayers/ring"

// DetRing is a ring of modules. Its surface is the smallest disk enclosing
// every module including its thickness.
type DetRing struct {
	dets    []*Det
	surface geom.BoundDisk
}

// NewDetRing builds a ring from its modules.
func NewDetRing(dets []*Det) (*DetRing, error) {
	if len(dets) == 0 {
		return nil, fmt.Errorf("ring: %w", ErrEmptyLayer)
	}
	rmin, rmax := math.Inf(1), math.Inf(-1)
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, d := range dets {
		plane := d.Surface()
		lo, hi := plane.RadialExtent()
		rmin = math.Min(rmin, lo)
		rmax = math.Max(rmax, hi)
		z := plane.Position().Z
		half := plane.RectangleBounds().HalfThickness
		zmin = math.Min(zmin, z-half)
		zmax = math.Max(zmax, z+half)
	}
	return &DetRing{
		dets:    append([]*Det(nil), dets...),
		surface: envelope(rmin, rmax, zmin, zmax),
	}, nil
}

func (r *DetRing) Surface() geom.BoundDisk { return r.surface }
func (r *DetRing) BasicComponents() []*Det { return r.dets }

// CompatibleDets propagates the state onto every module and keeps those the
// estimator accepts. Modules the propagation cannot reach are skipped.
func (r *DetRing) CompatibleDets(state trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetWithState {
	var result []DetWithState
	for _, d := range r.dets {
		st := prop.Propagate(state, d.Surface())
		if !st.IsValid() {
			continue
		}
		if est.EstimateSurface(st, d.Surface()) {
			result = append(result, DetWithState{Det: d, State: st})
		}
	}
	return result
}

// RingLayer is a sub-layer made of rings, searched in declaration order.
type RingLayer struct {
	rings   []Ring
	dets    []*Det
	surface geom.BoundDisk
}

// NewRingLayer builds a sub-layer over rings. Rings are expected in inner to
// outer order.
func NewRingLayer(rings []Ring) (*RingLayer, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("ring layer: %w", ErrEmptyLayer)
	}
	l := &RingLayer{rings: append([]Ring(nil), rings...)}
	rmin, rmax := math.Inf(1), math.Inf(-1)
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		s := ring.Surface()
		rmin = math.Min(rmin, s.InnerRadius())
		rmax = math.Max(rmax, s.OuterRadius())
		zmin = math.Min(zmin, s.ZMin())
		zmax = math.Max(zmax, s.ZMax())
		l.dets = append(l.dets, ring.BasicComponents()...)
	}
	l.surface = envelope(rmin, rmax, zmin, zmax)
	monitoring.Tracef(ringSubsystem, "constructing ring layer: %d dets %d rings z: %g r1: %g r2: %g",
		len(l.dets), len(l.rings), l.surface.Z(), rmin, rmax)
	return l, nil
}

func (l *RingLayer) Surface() geom.BoundDisk { return l.surface }
func (l *RingLayer) Rings() []Ring           { return l.rings }
func (l *RingLayer) BasicComponents() []*Det { return l.dets }

// CompatibleDets concatenates the compatible modules of every ring.
func (l *RingLayer) CompatibleDets(state trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetWithState {
	var result []DetWithState
	for _, ring := range l.rings {
		result = append(result, ring.CompatibleDets(state, prop, est)...)
	}
	monitoring.Tracef(ringSubsystem, "ring layer at z=%g: %d compatible dets", l.surface.Z(), len(result))
	return result
}

// envelope returns a disk centred between zmin and zmax.
func envelope(rmin, rmax, zmin, zmax float64) geom.BoundDisk {
	zPos := (zmin + zmax) / 2
	return geom.NewBoundDisk(r3.Vec{Z: zPos}, geom.NewDiskBounds(rmin, rmax, zmin-zPos, zmax-zPos))
}
