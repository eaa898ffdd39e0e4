package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a plane perpendicular to the z axis with a position and bounds.
type Surface interface {
	Position() r3.Vec
	Bounds() Bounds
}

// ToLocal expresses the global point g in the frame of s.
func ToLocal(s Surface, g r3.Vec) LocalPoint {
	d := r3.Sub(g, s.Position())
	return LocalPoint{X: d.X, Y: d.Y, Z: d.Z}
}

// ToGlobal expresses the local point p of s in the global frame.
func ToGlobal(s Surface, p LocalPoint) r3.Vec {
	return r3.Add(s.Position(), r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

// BoundDisk is a disk-shaped surface. It is immutable once constructed.
type BoundDisk struct {
	pos    r3.Vec
	bounds DiskBounds
}

// NewBoundDisk returns a disk at pos with the given bounds.
func NewBoundDisk(pos r3.Vec, bounds DiskBounds) BoundDisk {
	return BoundDisk{pos: pos, bounds: bounds}
}

func (d BoundDisk) Position() r3.Vec       { return d.pos }
func (d BoundDisk) Bounds() Bounds         { return d.bounds }
func (d BoundDisk) DiskBounds() DiskBounds { return d.bounds }
func (d BoundDisk) InnerRadius() float64   { return d.bounds.RMin }
func (d BoundDisk) OuterRadius() float64   { return d.bounds.RMax }
func (d BoundDisk) Thickness() float64     { return d.bounds.Thickness() }

// Z returns the axial coordinate of the disk position.
func (d BoundDisk) Z() float64 { return d.pos.Z }

// ZMin returns the global axial lower edge.
func (d BoundDisk) ZMin() float64 { return d.pos.Z + d.bounds.ZMin }

// ZMax returns the global axial upper edge.
func (d BoundDisk) ZMax() float64 { return d.pos.Z + d.bounds.ZMax }

// BoundPlane is a rectangular module surface.
type BoundPlane struct {
	pos    r3.Vec
	bounds RectangleBounds
}

// NewBoundPlane returns a rectangle centred on pos.
func NewBoundPlane(pos r3.Vec, bounds RectangleBounds) BoundPlane {
	return BoundPlane{pos: pos, bounds: bounds}
}

func (p BoundPlane) Position() r3.Vec                 { return p.pos }
func (p BoundPlane) Bounds() Bounds                   { return p.bounds }
func (p BoundPlane) RectangleBounds() RectangleBounds { return p.bounds }

// RadialExtent returns the smallest and largest transverse radius covered
// by the plane.
func (p BoundPlane) RadialExtent() (rmin, rmax float64) {
	ax, ay := math.Abs(p.pos.X), math.Abs(p.pos.Y)
	hw, hl := p.bounds.HalfWidth, p.bounds.HalfLength
	rmin = math.Hypot(math.Max(0, ax-hw), math.Max(0, ay-hl))
	rmax = math.Hypot(ax+hw, ay+hl)
	return rmin, rmax
}
