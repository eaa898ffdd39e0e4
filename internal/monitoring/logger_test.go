package monitoring

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture installs a recording logger and restores the defaults afterwards.
func capture(t *testing.T) *[]string {
	t.Helper()
	var (
		lines []string
		lmu   sync.Mutex
	)
	SetLogger(func(format string, v ...interface{}) {
		lmu.Lock()
		defer lmu.Unlock()
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() {
		SetLogger(nil)
		SetSubsystems()
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("value %d", 1)
	assert.Equal(t, []string{"value 1"}, *lines)

	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, *lines, 1, "no-op logger must not reach the previous one")
}

func TestTracef(t *testing.T) {
	lines := capture(t)

	Tracef("detlayers/double", "groups: %d", 2)
	assert.Equal(t, []string{"[detlayers/double] groups: 2"}, *lines)
}

func TestSetSubsystems(t *testing.T) {
	tests := []struct {
		name    string
		enabled []string
		want    []string
	}{
		{
			name: "all by default",
			want: []string{"[scan] s", "[scandb] db", "[detlayers/double] d", "[detlayers/ring] r"},
		},
		{
			name:    "exact names",
			enabled: []string{"scan", "detlayers/ring"},
			want:    []string{"[scan] s", "[detlayers/ring] r"},
		},
		{
			name:    "prefix",
			enabled: []string{"detlayers/"},
			want:    []string{"[detlayers/double] d", "[detlayers/ring] r"},
		},
		{
			name:    "blank names ignored",
			enabled: []string{" scandb ", ""},
			want:    []string{"[scandb] db"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := capture(t)
			SetSubsystems(tt.enabled...)

			Tracef("scan", "s")
			Tracef("scandb", "db")
			Tracef("detlayers/double", "d")
			Tracef("detlayers/ring", "r")
			assert.Equal(t, tt.want, *lines)
		})
	}
}

func TestTracef_Concurrent(t *testing.T) {
	lines := capture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Tracef("scan", "worker %d", i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, *lines, 8)
}
