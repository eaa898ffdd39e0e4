package detlayers

import (
	"math"

	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/monitoring"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

const subsystem = "detlayers/double"

// errorSigmas scales the predicted position error in Compatible.
const errorSigmas = 3.0

// DoubleLayer is a forward layer built from a front and a back sub-layer,
// the front one being closer to the interaction point.
type DoubleLayer struct {
	front   SubLayer
	back    SubLayer
	surface geom.BoundDisk
	rings   []Ring
	dets    []*Det
}

// NewDoubleLayer builds the layer and checks that every front module is
// closer to z=0 than every back module. A violation is reported as an
// *OrderingError.
func NewDoubleLayer(front, back SubLayer) (*DoubleLayer, error) {
	if front == nil || back == nil {
		return nil, ErrEmptyLayer
	}
	l := &DoubleLayer{front: front, back: back}
	l.rings = append(l.rings, front.Rings()...)
	l.rings = append(l.rings, back.Rings()...)
	l.dets = append(l.dets, front.BasicComponents()...)
	l.dets = append(l.dets, back.BasicComponents()...)
	l.surface = EnclosingSurface(front.Surface(), back.Surface())

	monitoring.Tracef(subsystem, "constructing double layer: %d dets %d rings z: %g r1: %g r2: %g",
		len(l.dets), len(l.rings), l.surface.Z(), l.surface.InnerRadius(), l.surface.OuterRadius())

	if err := l.selfTest(); err != nil {
		return nil, err
	}
	return l, nil
}

// MustNewDoubleLayer is NewDoubleLayer for geometry known to be correct.
// It panics on an ordering violation.
func MustNewDoubleLayer(front, back SubLayer) *DoubleLayer {
	l, err := NewDoubleLayer(front, back)
	if err != nil {
		panic(err)
	}
	return l
}

// EnclosingSurface returns the disk spanning both sub-layer disks including
// their thickness. The axial limits are pushed away from the origin by half
// a thickness on each side.
func EnclosingSurface(front, back geom.BoundDisk) geom.BoundDisk {
	rmin := math.Min(front.InnerRadius(), back.InnerRadius())
	rmax := math.Max(front.OuterRadius(), back.OuterRadius())

	zmin := front.Z()
	half := front.Thickness() / 2
	if zmin > 0 {
		zmin -= half
	} else {
		zmin += half
	}
	zmax := back.Z()
	half = back.Thickness() / 2
	if zmax > 0 {
		zmax += half
	} else {
		zmax -= half
	}
	zPos := (zmax + zmin) / 2
	return geom.NewBoundDisk(r3.Vec{Z: zPos}, geom.NewDiskBounds(rmin, rmax, zmin-zPos, zmax-zPos))
}

func (l *DoubleLayer) Front() SubLayer         { return l.front }
func (l *DoubleLayer) Back() SubLayer          { return l.back }
func (l *DoubleLayer) Surface() geom.BoundDisk { return l.surface }
func (l *DoubleLayer) Components() []SubLayer  { return []SubLayer{l.front, l.back} }
func (l *DoubleLayer) Rings() []Ring           { return l.rings }
func (l *DoubleLayer) BasicComponents() []*Det { return l.dets }

// RMin, RMax, ZMin and ZMax are the global limits of the enclosing surface.
func (l *DoubleLayer) RMin() float64 { return l.surface.InnerRadius() }
func (l *DoubleLayer) RMax() float64 { return l.surface.OuterRadius() }
func (l *DoubleLayer) ZMin() float64 { return l.surface.ZMin() }
func (l *DoubleLayer) ZMax() float64 { return l.surface.ZMax() }

// IsInsideOut reports whether the state moves away from the origin, judged
// by the sign of position·momentum. A zero product counts as incoming.
//
// This assumes the sub-layers are crossed in a monotonic order (front then
// back when outgoing) and does not model looping trajectories.
func (l *DoubleLayer) IsInsideOut(state trajectory.State) bool {
	return r3.Dot(state.GlobalPosition(), state.GlobalMomentum()) > 0
}

// Compatible propagates the state to the nearer sub-layer and tests the
// result against the enclosing surface widened by the layer thickness seen
// at the track angle and by three sigma of the predicted position error.
// The propagated state is returned in every case and may be invalid.
func (l *DoubleLayer) Compatible(start trajectory.State, prop propagation.Propagator, est estimator.Estimator) (bool, trajectory.State) {
	insideOut := l.IsInsideOut(start)
	closer := l.back
	if insideOut {
		closer = l.front
	}
	monitoring.Tracef(subsystem, "compatible is assuming inside-out direction: %t", insideOut)

	st := prop.Propagate(start, closer.Surface())
	if !st.IsValid() {
		return false, st
	}
	return l.ExpandedBounds(st).Inside(st.LocalPosition()), st
}

// ExpandedBounds returns the enclosing surface bounds widened radially by
// the tolerance for the propagated state. The x-y correlation of the error
// is ignored.
func (l *DoubleLayer) ExpandedBounds(st trajectory.State) geom.DiskBounds {
	deltaR := l.surface.Thickness() / 2 * math.Abs(math.Tan(st.LocalDirection().Theta()))
	if st.HasError() {
		e := st.LocalPositionError()
		deltaR += errorSigmas * math.Sqrt(e.XX+e.YY)
	}
	b := l.surface.DiskBounds()
	return geom.NewDiskBounds(b.RMin-deltaR, b.RMax+deltaR, b.ZMin, b.ZMax)
}

// GroupedCompatibleDets returns one group per sub-layer that has compatible
// modules, front before back whatever the direction of the state. An
// incompatible state yields no groups.
func (l *DoubleLayer) GroupedCompatibleDets(start trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetGroup {
	groups, _ := l.groupedCompatibleDets(start, prop, est)
	return groups
}

// CompatibleDets is GroupedCompatibleDets flattened into one list.
func (l *DoubleLayer) CompatibleDets(start trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetWithState {
	groups, ok := l.groupedCompatibleDets(start, prop, est)
	if !ok {
		monitoring.Tracef(subsystem, "compatibleDets: not compatible (should not have been selected!)")
		return nil
	}
	var n int
	for _, g := range groups {
		n += g.Len()
	}
	result := make([]DetWithState, 0, n)
	for _, g := range groups {
		result = append(result, g.Elements...)
	}
	return result
}

func (l *DoubleLayer) groupedCompatibleDets(start trajectory.State, prop propagation.Propagator, est estimator.Estimator) ([]DetGroup, bool) {
	ok, st := l.Compatible(start, prop, est)
	if !ok {
		monitoring.Tracef(subsystem, "groupedCompatibleDets: not compatible (should not have been selected!)")
		return nil, false
	}

	// TODO: order groups by traversal direction once the measurement
	// collector stops assuming front-then-back.
	monitoring.Tracef(subsystem, "groupedCompatibleDets are always given in inside-out order")

	var result []DetGroup
	for i, sub := range []SubLayer{l.front, l.back} {
		if dets := sub.CompatibleDets(st, prop, est); len(dets) > 0 {
			result = append(result, DetGroup{SubLayer: i, Elements: dets})
		}
	}
	monitoring.Tracef(subsystem, "double layer compatible groups: %d", len(result))
	return result, true
}

// IsCrack approximates whether gp falls in the radial gap between the first
// two rings of the back sub-layer. Azimuthal gaps and front/back overlap are
// not considered, and fewer than two back rings never report a crack.
func (l *DoubleLayer) IsCrack(gp r3.Vec) bool {
	rings := l.back.Rings()
	if len(rings) < 2 {
		return false
	}
	r := math.Hypot(gp.X, gp.Y)
	crackInner := rings[0].Surface().OuterRadius()
	crackOuter := rings[1].Surface().InnerRadius()
	monitoring.Tracef(subsystem, "in a crack: %g %g %g", crackInner, r, crackOuter)
	return r > crackInner && r < crackOuter
}

func (l *DoubleLayer) selfTest() error {
	for _, f := range l.front.BasicComponents() {
		fz := math.Abs(f.Surface().Position().Z)
		for _, b := range l.back.BasicComponents() {
			bz := math.Abs(b.Surface().Position().Z)
			if !(fz < bz) {
				return &OrderingError{FrontDet: f.ID(), BackDet: b.ID(), FrontZ: fz, BackZ: bz}
			}
		}
	}
	return nil
}
