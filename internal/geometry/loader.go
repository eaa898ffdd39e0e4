// Package geometry loads a JSON description of forward double layers and
// builds the detector objects used by the scan.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/detlayers/internal/detlayers"
	"github.com/banshee-data/detlayers/internal/fsutil"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxFileSize bounds the geometry file read into memory.
const maxFileSize = 8 * 1024 * 1024

// ErrNoLayers is returned when a geometry file declares no layers.
var ErrNoLayers = errors.New("geometry declares no layers")

// File is the on-disk geometry description.
type File struct {
	LengthUnit string      `json:"length_unit,omitempty"`
	Layers     []LayerSpec `json:"layers"`
}

// LayerSpec describes one double layer as two ordered lists of rings.
type LayerSpec struct {
	Name  string     `json:"name"`
	Front []RingSpec `json:"front"`
	Back  []RingSpec `json:"back"`
}

type RingSpec struct {
	Dets []DetSpec `json:"dets"`
}

// DetSpec places a rectangular module with its centre at (X, Y, Z).
type DetSpec struct {
	ID            uint32  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	HalfWidth     float64 `json:"half_width"`
	HalfLength    float64 `json:"half_length"`
	HalfThickness float64 `json:"half_thickness"`
}

// NamedLayer pairs a built double layer with its name from the geometry file.
type NamedLayer struct {
	Name  string
	Layer *detlayers.DoubleLayer
}

// Load reads and builds every layer in the geometry file at path.
// fallbackUnit applies when the file does not declare length_unit.
func Load(fsys fsutil.FileSystem, path, fallbackUnit string) ([]NamedLayer, error) {
	data, err := fsutil.ReadFile(fsys, path, maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse geometry JSON: %w", err)
	}
	if f.LengthUnit == "" {
		f.LengthUnit = fallbackUnit
	}
	return Build(f)
}

// Build converts a parsed geometry description into double layers.
func Build(f File) ([]NamedLayer, error) {
	if !units.IsValid(f.LengthUnit) {
		return nil, fmt.Errorf("geometry: %w %q (valid: %s)", units.ErrUnknownUnit, f.LengthUnit, units.GetValidUnitsString())
	}
	if len(f.Layers) == 0 {
		return nil, ErrNoLayers
	}

	layers := make([]NamedLayer, 0, len(f.Layers))
	seen := make(map[uint32]bool)
	for i, ls := range f.Layers {
		name := ls.Name
		if name == "" {
			name = fmt.Sprintf("layer%d", i)
		}
		front, err := buildSubLayer(ls.Front, f.LengthUnit, seen)
		if err != nil {
			return nil, fmt.Errorf("layer %s front: %w", name, err)
		}
		back, err := buildSubLayer(ls.Back, f.LengthUnit, seen)
		if err != nil {
			return nil, fmt.Errorf("layer %s back: %w", name, err)
		}
		dl, err := detlayers.NewDoubleLayer(front, back)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", name, err)
		}
		layers = append(layers, NamedLayer{Name: name, Layer: dl})
	}
	return layers, nil
}

func buildSubLayer(specs []RingSpec, unit string, seen map[uint32]bool) (*detlayers.RingLayer, error) {
	if len(specs) == 0 {
		return nil, detlayers.ErrEmptyLayer
	}
	rings := make([]detlayers.Ring, 0, len(specs))
	for i, rs := range specs {
		dets := make([]*detlayers.Det, 0, len(rs.Dets))
		for _, ds := range rs.Dets {
			d, err := buildDet(ds, unit)
			if err != nil {
				return nil, fmt.Errorf("ring %d: %w", i, err)
			}
			if seen[ds.ID] {
				return nil, fmt.Errorf("ring %d: duplicate det id %d", i, ds.ID)
			}
			seen[ds.ID] = true
			dets = append(dets, d)
		}
		r, err := detlayers.NewDetRing(dets)
		if err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		rings = append(rings, r)
	}
	return detlayers.NewRingLayer(rings)
}

func buildDet(ds DetSpec, unit string) (*detlayers.Det, error) {
	if ds.HalfWidth <= 0 || ds.HalfLength <= 0 || ds.HalfThickness < 0 {
		return nil, fmt.Errorf("det %d: half sizes must be positive", ds.ID)
	}
	vals := []float64{ds.X, ds.Y, ds.Z, ds.HalfWidth, ds.HalfLength, ds.HalfThickness}
	for i, v := range vals {
		n, err := units.ToNative(v, unit)
		if err != nil {
			return nil, fmt.Errorf("det %d: %w", ds.ID, err)
		}
		vals[i] = n
	}
	plane := geom.NewBoundPlane(
		r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]},
		geom.RectangleBounds{HalfWidth: vals[3], HalfLength: vals[4], HalfThickness: vals[5]},
	)
	return detlayers.NewDet(ds.ID, plane), nil
}
