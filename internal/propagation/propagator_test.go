package propagation

import (
	"testing"

	"github.com/banshee-data/detlayers/internal/geom"
	"github.com/banshee-data/detlayers/internal/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func diskAt(z float64) geom.BoundDisk {
	return geom.NewBoundDisk(r3.Vec{Z: z}, geom.DiskBounds{RMin: 10, RMax: 100, ZMin: -1, ZMax: 1})
}

func TestStraightLinePropagate(t *testing.T) {
	t.Parallel()
	start := trajectory.New(nil, r3.Vec{}, r3.Vec{X: 1, Y: 0.5, Z: 10}, &trajectory.LocalError{XX: 0.01, YY: 0.04})

	got := NewStraightLine(AlongMomentum).Propagate(start, diskAt(300))
	require.True(t, got.IsValid())
	assert.InDelta(t, 30, got.GlobalPosition().X, 1e-9)
	assert.InDelta(t, 15, got.GlobalPosition().Y, 1e-9)
	assert.Equal(t, 300.0, got.GlobalPosition().Z)
	assert.Equal(t, 0.0, got.LocalPosition().Z)
	assert.True(t, got.HasError())
	assert.Equal(t, 0.04, got.LocalPositionError().YY)
}

func TestStraightLineDirection(t *testing.T) {
	t.Parallel()
	start := trajectory.New(nil, r3.Vec{Z: 400}, r3.Vec{Z: 1}, nil)

	tests := []struct {
		dir   Direction
		valid bool
	}{
		{AlongMomentum, false},
		{OppositeToMomentum, true},
		{AnyDirection, true},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got := NewStraightLine(tt.dir).Propagate(start, diskAt(300))
			assert.Equal(t, tt.valid, got.IsValid())
		})
	}
}

func TestStraightLineFailures(t *testing.T) {
	t.Parallel()
	p := NewStraightLine(AnyDirection)

	assert.False(t, p.Propagate(trajectory.Invalid(), diskAt(300)).IsValid())
	parallel := trajectory.New(nil, r3.Vec{}, r3.Vec{X: 1}, nil)
	assert.False(t, p.Propagate(parallel, diskAt(300)).IsValid())
	assert.False(t, p.Propagate(parallel, nil).IsValid())
}

func TestParseDirection(t *testing.T) {
	t.Parallel()
	for _, d := range []Direction{AlongMomentum, OppositeToMomentum, AnyDirection} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
