package scan

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/detlayers/internal/fsutil"
	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"github.com/banshee-data/detlayers/internal/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxSeedFileSize bounds the seed file read into memory.
const maxSeedFileSize = 32 * 1024 * 1024

// Seed is a track state to scan, with optional measured hits.
type Seed struct {
	Name  string
	State trajectory.State
	Hits  []hits.Hit
}

// SeedFile is the on-disk seed description. Positions, position errors
// and hit coordinates are in LengthUnit; momenta are only used for
// direction and are not converted.
type SeedFile struct {
	LengthUnit string     `json:"length_unit,omitempty"`
	Seeds      []SeedSpec `json:"seeds"`
}

type SeedSpec struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Momentum [3]float64 `json:"momentum"`
	Error    *ErrorSpec `json:"error,omitempty"`
	Hits     []HitSpec  `json:"hits,omitempty"`
}

// ErrorSpec is a 2x2 position covariance in length units squared.
type ErrorSpec struct {
	XX float64 `json:"xx"`
	XY float64 `json:"xy"`
	YY float64 `json:"yy"`
}

// HitSpec is a hit in the local frame of module DetID. Strip hits use XX as
// the variance along the strip axis at Angle radians.
type HitSpec struct {
	Kind  string  `json:"kind"`
	DetID uint32  `json:"det_id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	XX    float64 `json:"xx"`
	XY    float64 `json:"xy"`
	YY    float64 `json:"yy"`
	Angle float64 `json:"angle,omitempty"`
}

// LoadSeeds reads the seed file at path. fallbackUnit applies when the file
// does not declare length_unit.
func LoadSeeds(fsys fsutil.FileSystem, path, fallbackUnit string) ([]Seed, error) {
	data, err := fsutil.ReadFile(fsys, path, maxSeedFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f SeedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}
	if f.LengthUnit == "" {
		f.LengthUnit = fallbackUnit
	}
	return BuildSeeds(f)
}

// BuildSeeds converts a parsed seed file into seeds in native units.
func BuildSeeds(f SeedFile) ([]Seed, error) {
	s, err := units.ToNative(1, f.LengthUnit)
	if err != nil {
		return nil, fmt.Errorf("seeds: %w", err)
	}
	seeds := make([]Seed, 0, len(f.Seeds))
	for i, ss := range f.Seeds {
		name := ss.Name
		if name == "" {
			name = fmt.Sprintf("seed%d", i)
		}
		mom := r3.Vec{X: ss.Momentum[0], Y: ss.Momentum[1], Z: ss.Momentum[2]}
		if r3.Norm(mom) == 0 {
			return nil, fmt.Errorf("seed %s: momentum must be non-zero", name)
		}
		pos := r3.Scale(s, r3.Vec{X: ss.Position[0], Y: ss.Position[1], Z: ss.Position[2]})

		var le *trajectory.LocalError
		if ss.Error != nil {
			le = &trajectory.LocalError{XX: ss.Error.XX * s * s, XY: ss.Error.XY * s * s, YY: ss.Error.YY * s * s}
		}

		seed := Seed{Name: name, State: trajectory.New(nil, pos, mom, le)}
		for j, hs := range ss.Hits {
			h, err := buildHit(hs, s)
			if err != nil {
				return nil, fmt.Errorf("seed %s hit %d: %w", name, j, err)
			}
			seed.Hits = append(seed.Hits, h)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func buildHit(hs HitSpec, s float64) (hits.Hit, error) {
	kind, err := hits.ParseKind(hs.Kind)
	if err != nil {
		return hits.Hit{}, err
	}
	pos := geom.LocalPoint{X: hs.X * s, Y: hs.Y * s}
	le := trajectory.LocalError{XX: hs.XX * s * s, XY: hs.XY * s * s, YY: hs.YY * s * s}

	var h hits.Hit
	switch kind {
	case hits.KindPixel:
		h = hits.NewPixel(hs.DetID, pos, le)
	case hits.KindMatchedStrip:
		h = hits.NewMatchedStrip(hs.DetID, pos, le)
	case hits.KindStrip:
		h = hits.NewStrip(hs.DetID, pos, le.XX, hs.Angle)
	}
	if err := h.Validate(); err != nil {
		return hits.Hit{}, err
	}
	return h, nil
}
