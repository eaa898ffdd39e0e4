package detlayers

import (
	"errors"
	"fmt"
)

var (
	// ErrLayerOrdering is wrapped by OrderingError.
	ErrLayerOrdering = errors.New("front sub-layer is not closer to the origin than back sub-layer")
	// ErrEmptyLayer is returned when a ring or layer has nothing to bound.
	ErrEmptyLayer = errors.New("empty layer")
)

// OrderingError names the first module pair found violating the front/back
// ordering of a DoubleLayer.
type OrderingError struct {
	FrontDet uint32
	BackDet  uint32
	FrontZ   float64 // |z| of the front module
	BackZ    float64 // |z| of the back module
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%v: front det %d at |z|=%g, back det %d at |z|=%g",
		ErrLayerOrdering, e.FrontDet, e.FrontZ, e.BackDet, e.BackZ)
}

func (e *OrderingError) Unwrap() error { return ErrLayerOrdering }
