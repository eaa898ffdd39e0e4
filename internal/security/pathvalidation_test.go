package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain file", filepath.Join(dir, "scan.png"), false},
		{"nested missing dirs", filepath.Join(dir, "a", "b", "scan.html"), false},
		{"dot dot inside", filepath.Join(dir, "a", "..", "scan.db"), false},
		{"escapes", filepath.Join(dir, "..", "scan.db"), true},
		{"root", "/etc/passwd", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePathWithinDirectory(tt.path, dir)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinDirectory_Symlink(t *testing.T) {
	t.Parallel()
	safe := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(safe, "out")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	err := ValidatePathWithinDirectory(filepath.Join(link, "scan.png"), safe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestValidateOutputPath(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateOutputPath(filepath.Join(t.TempDir(), "scan.png")))
	assert.NoError(t, ValidateOutputPath("scan.png"))
	assert.Error(t, ValidateOutputPath("/proc/nonexistent/scan.png"))
}
