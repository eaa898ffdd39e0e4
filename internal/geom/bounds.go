package geom

import "math"

// LocalPoint is a position in a surface's local frame.
type LocalPoint struct {
	X, Y, Z float64
}

// Perp returns the transverse distance from the local origin.
func (p LocalPoint) Perp() float64 {
	return math.Hypot(p.X, p.Y)
}

// LocalVector is a direction in a surface's local frame.
type LocalVector struct {
	X, Y, Z float64
}

// Theta returns the polar angle to the surface normal (local z), in [0, π].
func (v LocalVector) Theta() float64 {
	return math.Atan2(math.Hypot(v.X, v.Y), v.Z)
}

// Bounds describes the sensitive extent of a surface in its local frame.
type Bounds interface {
	// Inside reports whether p lies strictly within the bounds.
	Inside(p LocalPoint) bool
	// InsideTolerance is Inside on the transverse coordinates only, with the
	// extent widened by tolX and tolY.
	InsideTolerance(p LocalPoint, tolX, tolY float64) bool
	// Thickness is the full extent along the surface normal.
	Thickness() float64
}

// DiskBounds is an annulus with an axial extent, expressed relative to the
// owning surface's position.
type DiskBounds struct {
	RMin float64
	RMax float64
	ZMin float64
	ZMax float64
}

// NewDiskBounds returns bounds with the radii and the axial limits each put
// in ascending order, so that callers on the negative-z side may pass them
// in either order.
func NewDiskBounds(rmin, rmax, zmin, zmax float64) DiskBounds {
	if rmin > rmax {
		rmin, rmax = rmax, rmin
	}
	if zmin > zmax {
		zmin, zmax = zmax, zmin
	}
	return DiskBounds{RMin: rmin, RMax: rmax, ZMin: zmin, ZMax: zmax}
}

// Inside reports whether p is strictly inside the annulus and axial extent.
func (b DiskBounds) Inside(p LocalPoint) bool {
	if p.Z <= b.ZMin || p.Z >= b.ZMax {
		return false
	}
	r := p.Perp()
	return r > b.RMin && r < b.RMax
}

// InsideTolerance widens the radial range by the larger of the two tolerances.
func (b DiskBounds) InsideTolerance(p LocalPoint, tolX, tolY float64) bool {
	tol := math.Max(tolX, tolY)
	r := p.Perp()
	return r > b.RMin-tol && r < b.RMax+tol
}

// Thickness returns ZMax - ZMin.
func (b DiskBounds) Thickness() float64 {
	return b.ZMax - b.ZMin
}

// RectangleBounds is an axis-aligned rectangle centred on the surface
// position, as used for individual sensor modules.
type RectangleBounds struct {
	HalfWidth     float64 // along local x
	HalfLength    float64 // along local y
	HalfThickness float64 // along local z
}

func (b RectangleBounds) Inside(p LocalPoint) bool {
	return math.Abs(p.X) < b.HalfWidth &&
		math.Abs(p.Y) < b.HalfLength &&
		math.Abs(p.Z) < b.HalfThickness
}

func (b RectangleBounds) InsideTolerance(p LocalPoint, tolX, tolY float64) bool {
	return math.Abs(p.X) < b.HalfWidth+tolX && math.Abs(p.Y) < b.HalfLength+tolY
}

func (b RectangleBounds) Thickness() float64 {
	return 2 * b.HalfThickness
}
