// Package units provides shared constants and conversion for length units.
// The native length unit of the geometry is the centimetre.
package units

import (
	"errors"
	"fmt"
)

// Unit constants
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ErrUnknownUnit is returned by ToNative for units outside ValidUnits.
var ErrUnknownUnit = errors.New("unknown length unit")

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mm, cm, m"
}

// scale returns the number of centimetres in one unit.
func scale(unit string) (float64, bool) {
	switch unit {
	case MM:
		return 0.1, true
	case CM:
		return 1, true
	case M:
		return 100, true
	default:
		return 0, false
	}
}

// ToNative converts a length in unit to centimetres.
func ToNative(v float64, unit string) (float64, error) {
	s, ok := scale(unit)
	if !ok {
		return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownUnit, unit, GetValidUnitsString())
	}
	return v * s, nil
}

// FromNative converts a length in centimetres to unit.
// Unknown units leave the value unchanged.
func FromNative(v float64, unit string) float64 {
	s, ok := scale(unit)
	if !ok {
		return v
	}
	return v / s
}
