package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/units"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.MaxChi2 == nil || *cfg.MaxChi2 != 30 {
		t.Errorf("Expected MaxChi2 30, got %v", cfg.MaxChi2)
	}
	if cfg.NSigma == nil || *cfg.NSigma != 3 {
		t.Errorf("Expected NSigma 3, got %v", cfg.NSigma)
	}
	if cfg.GetPropagationDirection() != propagation.AnyDirection {
		t.Errorf("GetPropagationDirection() = %v, want any", cfg.GetPropagationDirection())
	}
	if cfg.GetLengthUnit() != units.CM {
		t.Errorf("GetLengthUnit() = %q, want cm", cfg.GetLengthUnit())
	}
	if !cfg.GetCheckCracks() || !cfg.GetEstimateHits() {
		t.Error("Expected crack checks and hit estimation enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyTuningConfigGetters(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetMaxChi2() != 30 {
		t.Errorf("GetMaxChi2() = %f, want 30", cfg.GetMaxChi2())
	}
	if cfg.GetNSigma() != 3 {
		t.Errorf("GetNSigma() = %f, want 3", cfg.GetNSigma())
	}
	if cfg.GetPropagationDirection() != propagation.AnyDirection {
		t.Errorf("GetPropagationDirection() = %v, want any", cfg.GetPropagationDirection())
	}
	if cfg.GetLengthUnit() != units.CM {
		t.Errorf("GetLengthUnit() = %q, want cm", cfg.GetLengthUnit())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "max_chi2": 50,
  "propagation_direction": "along",
  "length_unit": "mm",
  "check_cracks": false
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetMaxChi2() != 50 {
		t.Errorf("GetMaxChi2() = %f, want 50", cfg.GetMaxChi2())
	}
	// omitted fields keep defaults
	if cfg.GetNSigma() != 3 {
		t.Errorf("GetNSigma() = %f, want 3", cfg.GetNSigma())
	}
	if cfg.GetPropagationDirection() != propagation.AlongMomentum {
		t.Errorf("GetPropagationDirection() = %v, want along", cfg.GetPropagationDirection())
	}
	if cfg.GetLengthUnit() != units.MM {
		t.Errorf("GetLengthUnit() = %q, want mm", cfg.GetLengthUnit())
	}
	if cfg.GetCheckCracks() {
		t.Error("Expected check_cracks false")
	}
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", `{}`), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "missing.json"), "failed to stat"},
		{"bad json", write("bad.json", `{"max_chi2":`), "failed to parse"},
		{"negative chi2", write("neg.json", `{"max_chi2": -1}`), "max_chi2 must be positive"},
		{"zero sigma", write("sigma.json", `{"n_sigma": 0}`), "n_sigma must be positive"},
		{"bad direction", write("dir.json", `{"propagation_direction": "sideways"}`), "propagation_direction"},
		{"bad unit", write("unit.json", `{"length_unit": "furlong"}`), "length_unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTuningConfigTooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	if err := os.WriteFile(p, make([]byte, 1024*1024+1), 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := LoadTuningConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetMaxChi2() != DefaultTuningConfig().GetMaxChi2() {
		t.Errorf("defaults file max_chi2 = %f, want %f", cfg.GetMaxChi2(), DefaultTuningConfig().GetMaxChi2())
	}
	if cfg.GetPropagationDirection() != propagation.AnyDirection {
		t.Errorf("defaults file direction = %v, want any", cfg.GetPropagationDirection())
	}
}
