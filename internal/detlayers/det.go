package detlayers

import (
	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/trajectory"
)

// Det is a single sensor module.
type Det struct {
	id    uint32
	plane geom.BoundPlane
}

// NewDet returns a module with the given identifier and surface.
func NewDet(id uint32, plane geom.BoundPlane) *Det {
	return &Det{id: id, plane: plane}
}

func (d *Det) ID() uint32               { return d.id }
func (d *Det) Surface() geom.BoundPlane { return d.plane }

// DetWithState pairs a compatible module with the state propagated onto it.
type DetWithState struct {
	Det   *Det
	State trajectory.State
}

// DetGroup holds the compatible modules found on one sub-layer, in search
// order. Groups are never empty.
type DetGroup struct {
	SubLayer int // 0 front, 1 back
	Elements []DetWithState
}

// Len returns the number of elements in the group.
func (g DetGroup) Len() int { return len(g.Elements) }

// Ring is a set of modules sharing a bounding disk.
type Ring interface {
	Surface() geom.BoundDisk
	BasicComponents() []*Det
	CompatibleDets(state trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetWithState
}

// SubLayer is one side of a DoubleLayer: a set of rings at roughly the same z.
type SubLayer interface {
	Surface() geom.BoundDisk
	Rings() []Ring
	BasicComponents() []*Det
	// CompatibleDets returns the modules the state may cross, ordered by the
	// sub-layer's own search.
	CompatibleDets(state trajectory.State, prop propagation.Propagator, est estimator.Estimator) []DetWithState
}
