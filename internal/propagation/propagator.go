// Package propagation advances trajectory states to target surfaces.
//
// The layer search only depends on the Propagator interface. StraightLine is
// a field-free reference implementation used by the layerscan tool and by
// tests.
package propagation

import (
	"fmt"

	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// Propagator moves a state onto a surface. A failed propagation returns an
// invalid state; callers must check IsValid before using the result.
type Propagator interface {
	Propagate(state trajectory.State, target geom.Surface) trajectory.State
}

// Direction restricts the sign of the path length a propagator accepts.
type Direction int

const (
	AlongMomentum Direction = iota
	OppositeToMomentum
	AnyDirection
)

func (d Direction) String() string {
	switch d {
	case AlongMomentum:
		return "along"
	case OppositeToMomentum:
		return "opposite"
	case AnyDirection:
		return "any"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection maps "along", "opposite" or "any" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "along":
		return AlongMomentum, nil
	case "opposite":
		return OppositeToMomentum, nil
	case "any":
		return AnyDirection, nil
	}
	return 0, fmt.Errorf("unknown propagation direction %q", s)
}

// StraightLine propagates along the momentum direction to the plane z = const
// of the target surface. Positional error is carried over unchanged.
type StraightLine struct {
	Direction Direction
}

// NewStraightLine returns a straight-line propagator for the direction d.
func NewStraightLine(d Direction) StraightLine {
	return StraightLine{Direction: d}
}

// Propagate implements Propagator.
func (p StraightLine) Propagate(state trajectory.State, target geom.Surface) trajectory.State {
	if !state.IsValid() || target == nil {
		return trajectory.Invalid()
	}
	mom := state.GlobalMomentum()
	if mom.Z == 0 {
		return trajectory.Invalid()
	}
	pos := state.GlobalPosition()
	t := (target.Position().Z - pos.Z) / mom.Z
	switch p.Direction {
	case AlongMomentum:
		if t < 0 {
			return trajectory.Invalid()
		}
	case OppositeToMomentum:
		if t > 0 {
			return trajectory.Invalid()
		}
	}
	next := r3.Add(pos, r3.Scale(t, mom))
	// land exactly on the plane
	next.Z = target.Position().Z

	var err *trajectory.LocalError
	if state.HasError() {
		e := state.LocalPositionError()
		err = &e
	}
	return trajectory.New(target, next, mom, err)
}
