// Package report renders scan results: an r-z envelope plot of the layers
// as PNG and an interactive HTML scatter of the propagated states.
package report

import (
	"math"

	"github.com/banshee-data/detlayers/internal/geometry"
	"github.com/banshee-data/detlayers/internal/scan"
	"github.com/banshee-data/detlayers/internal/units"
)

// Options control units and titles of the rendered reports.
type Options struct {
	// Unit is the length unit of the axes; empty means centimetres.
	Unit  string
	Title string
}

func (o Options) unit() string {
	if o.Unit == "" || !units.IsValid(o.Unit) {
		return units.CM
	}
	return o.Unit
}

func (o Options) title() string {
	if o.Title == "" {
		return "Forward double layers"
	}
	return o.Title
}

// Point is a propagated state in r-z coordinates.
type Point struct {
	Seed  string
	Layer string
	Z     float64
	R     float64
	// Class is "compatible", "crack" or "incompatible".
	Class string
}

const (
	ClassCompatible   = "compatible"
	ClassCrack        = "crack"
	ClassIncompatible = "incompatible"
)

// Points flattens the valid propagated states of results, converted to
// unit.
func Points(results []scan.SeedResult, unit string) []Point {
	var out []Point
	for _, sr := range results {
		for _, lr := range sr.Layers {
			if !lr.Propagated.IsValid() {
				continue
			}
			gp := lr.Propagated.GlobalPosition()
			class := ClassIncompatible
			switch {
			case lr.Crack:
				class = ClassCrack
			case lr.Compatible:
				class = ClassCompatible
			}
			out = append(out, Point{
				Seed:  sr.Seed.Name,
				Layer: lr.Layer,
				Z:     units.FromNative(gp.Z, unit),
				R:     units.FromNative(math.Hypot(gp.X, gp.Y), unit),
				Class: class,
			})
		}
	}
	return out
}

// Envelope is the r-z outline of a layer's enclosing surface as a closed
// polygon.
func Envelope(l geometry.NamedLayer, unit string) [][2]float64 {
	zmin := units.FromNative(l.Layer.ZMin(), unit)
	zmax := units.FromNative(l.Layer.ZMax(), unit)
	rmin := units.FromNative(l.Layer.RMin(), unit)
	rmax := units.FromNative(l.Layer.RMax(), unit)
	return [][2]float64{{zmin, rmin}, {zmax, rmin}, {zmax, rmax}, {zmin, rmax}, {zmin, rmin}}
}
