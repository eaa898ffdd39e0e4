// Package hits defines the reconstructed hits matched against predicted
// trajectory states.
package hits

import (
	"fmt"

	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/trajectory"
)

// Kind is the closed set of hit shapes.
type Kind int

const (
	// KindPixel is a two-dimensional pixel cluster.
	KindPixel Kind = iota + 1
	// KindMatchedStrip is a two-dimensional hit built from a stereo strip pair.
	KindMatchedStrip
	// KindStrip is a one-dimensional hit from a single strip sensor.
	KindStrip
)

func (k Kind) String() string {
	switch k {
	case KindPixel:
		return "pixel"
	case KindMatchedStrip:
		return "matched"
	case KindStrip:
		return "strip"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps the names returned by Kind.String back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pixel":
		return KindPixel, nil
	case "matched":
		return KindMatchedStrip, nil
	case "strip":
		return KindStrip, nil
	}
	return 0, fmt.Errorf("unknown hit kind %q", s)
}

// Dimension returns the number of measured coordinates, or 0 for an
// unknown kind.
func (k Kind) Dimension() int {
	switch k {
	case KindPixel, KindMatchedStrip:
		return 2
	case KindStrip:
		return 1
	default:
		return 0
	}
}

// Hit is a measurement on a sensor module in the module's local frame.
//
// For strip hits only the coordinate along the axis at StripAngle (radians
// from local x) is measured; Position carries that coordinate projected back
// onto the plane and Error.Project(StripAngle) is its variance.
type Hit struct {
	Kind       Kind
	DetID      uint32
	Position   geom.LocalPoint
	Error      trajectory.LocalError
	StripAngle float64
}

// NewPixel returns a pixel hit.
func NewPixel(detID uint32, pos geom.LocalPoint, err trajectory.LocalError) Hit {
	return Hit{Kind: KindPixel, DetID: detID, Position: pos, Error: err}
}

// NewMatchedStrip returns a two-dimensional stereo strip hit.
func NewMatchedStrip(detID uint32, pos geom.LocalPoint, err trajectory.LocalError) Hit {
	return Hit{Kind: KindMatchedStrip, DetID: detID, Position: pos, Error: err}
}

// NewStrip returns a one-dimensional strip hit measuring the coordinate along
// angle with the given variance.
func NewStrip(detID uint32, pos geom.LocalPoint, variance, angle float64) Hit {
	return Hit{
		Kind:       KindStrip,
		DetID:      detID,
		Position:   pos,
		Error:      trajectory.LocalError{XX: variance, YY: variance},
		StripAngle: angle,
	}
}

// Dimension returns the number of measured coordinates.
func (h Hit) Dimension() int {
	return h.Kind.Dimension()
}

// Validate rejects hits with an unknown kind or a non-positive variance.
func (h Hit) Validate() error {
	switch h.Kind.Dimension() {
	case 2:
		if h.Error.XX <= 0 || h.Error.YY <= 0 {
			return fmt.Errorf("%s hit on det %d: variances must be positive", h.Kind, h.DetID)
		}
	case 1:
		if h.Error.Project(h.StripAngle) <= 0 {
			return fmt.Errorf("strip hit on det %d: variance must be positive", h.DetID)
		}
	default:
		return fmt.Errorf("hit on det %d: %s", h.DetID, h.Kind)
	}
	return nil
}
