// Package trajectory defines the predicted particle state consumed by the
// layer search and the hit estimators.
package trajectory

import (
	"math"

	"github.com/banshee-data/detlayers/internal/geom"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// LocalError is the local positional covariance of a state or a hit.
type LocalError struct {
	XX float64
	XY float64
	YY float64
}

// SymDense returns the error as a 2x2 symmetric matrix.
func (e LocalError) SymDense() *mat.SymDense {
	return mat.NewSymDense(2, []float64{e.XX, e.XY, e.XY, e.YY})
}

// Add returns the element-wise sum of two errors.
func (e LocalError) Add(o LocalError) LocalError {
	return LocalError{XX: e.XX + o.XX, XY: e.XY + o.XY, YY: e.YY + o.YY}
}

// Project returns the variance along the unit axis (cos phi, sin phi).
func (e LocalError) Project(phi float64) float64 {
	c, s := math.Cos(phi), math.Sin(phi)
	return c*c*e.XX + 2*s*c*e.XY + s*s*e.YY
}

// State is a trajectory state on a surface. The zero value is invalid.
// States are values and never mutated after construction.
type State struct {
	valid    bool
	surface  geom.Surface
	position r3.Vec
	momentum r3.Vec
	err      *LocalError
}

// New returns a valid state on surface s. err may be nil when the state
// carries no positional uncertainty.
func New(s geom.Surface, position, momentum r3.Vec, err *LocalError) State {
	st := State{valid: true, surface: s, position: position, momentum: momentum}
	if err != nil {
		e := *err
		st.err = &e
	}
	return st
}

// Invalid returns the state reported by a failed propagation.
func Invalid() State {
	return State{}
}

func (s State) IsValid() bool          { return s.valid }
func (s State) Surface() geom.Surface  { return s.surface }
func (s State) GlobalPosition() r3.Vec { return s.position }
func (s State) GlobalMomentum() r3.Vec { return s.momentum }
func (s State) HasError() bool         { return s.err != nil }

// LocalPositionError returns the positional covariance; zero when the state
// has no error.
func (s State) LocalPositionError() LocalError {
	if s.err == nil {
		return LocalError{}
	}
	return *s.err
}

// LocalPosition returns the position in the frame of the state's surface.
// A state without a surface is expressed in the global frame.
func (s State) LocalPosition() geom.LocalPoint {
	if s.surface == nil {
		return geom.LocalPoint{X: s.position.X, Y: s.position.Y, Z: s.position.Z}
	}
	return geom.ToLocal(s.surface, s.position)
}

// LocalDirection returns the unit momentum in the surface frame.
func (s State) LocalDirection() geom.LocalVector {
	if r3.Norm(s.momentum) == 0 {
		return geom.LocalVector{}
	}
	u := r3.Unit(s.momentum)
	return geom.LocalVector{X: u.X, Y: u.Y, Z: u.Z}
}

// OnSurface returns a copy of s re-expressed on another surface without
// moving it.
func (s State) OnSurface(surface geom.Surface) State {
	s.surface = surface
	return s
}
