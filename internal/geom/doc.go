// Package geom holds the immutable surface and bounds value types shared by
// the detector-layer search.
//
// All forward surfaces are planes perpendicular to the beam (z) axis, so a
// surface's local frame is its global frame translated to the surface
// position. Lengths are in the geometry's native unit (cm).
package geom
