package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the knobs of a layer scan. Every field is optional;
// the Get* methods fall back to built-in defaults for fields left unset.
type TuningConfig struct {
	// Estimator params
	MaxChi2 *float64 `json:"max_chi2,omitempty"`
	NSigma  *float64 `json:"n_sigma,omitempty"`

	// Propagation params
	PropagationDirection *string `json:"propagation_direction,omitempty"` // "along", "opposite" or "any"

	// Geometry params
	LengthUnit *string `json:"length_unit,omitempty"` // unit of geometry files without their own

	// Scan params
	CheckCracks *bool `json:"check_cracks,omitempty"`
	EstimateHit *bool `json:"estimate_hits,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// default.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		MaxChi2:              ptrFloat64(defaultMaxChi2),
		NSigma:               ptrFloat64(defaultNSigma),
		PropagationDirection: ptrString(defaultDirection),
		LengthUnit:           ptrString(units.CM),
		CheckCracks:          ptrBool(true),
		EstimateHit:          ptrBool(true),
	}
}

const (
	defaultMaxChi2   = 30.0
	defaultNSigma    = 3.0
	defaultDirection = "any"
)

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Fields omitted from the JSON file keep their defaults, so partial configs
// are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/layerscan/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxChi2 != nil && *c.MaxChi2 <= 0 {
		return fmt.Errorf("max_chi2 must be positive, got %f", *c.MaxChi2)
	}
	if c.NSigma != nil && *c.NSigma <= 0 {
		return fmt.Errorf("n_sigma must be positive, got %f", *c.NSigma)
	}
	if c.PropagationDirection != nil {
		if _, err := propagation.ParseDirection(*c.PropagationDirection); err != nil {
			return fmt.Errorf("invalid propagation_direction: %w", err)
		}
	}
	if c.LengthUnit != nil && !units.IsValid(*c.LengthUnit) {
		return fmt.Errorf("length_unit must be one of %s, got %q", units.GetValidUnitsString(), *c.LengthUnit)
	}
	return nil
}

// GetMaxChi2 returns the max_chi2 value or the default.
func (c *TuningConfig) GetMaxChi2() float64 {
	if c.MaxChi2 == nil {
		return defaultMaxChi2
	}
	return *c.MaxChi2
}

// GetNSigma returns the n_sigma value or the default.
func (c *TuningConfig) GetNSigma() float64 {
	if c.NSigma == nil {
		return defaultNSigma
	}
	return *c.NSigma
}

// GetPropagationDirection returns the parsed propagation direction, or the
// default when unset or unparseable.
func (c *TuningConfig) GetPropagationDirection() propagation.Direction {
	s := defaultDirection
	if c.PropagationDirection != nil {
		s = *c.PropagationDirection
	}
	d, err := propagation.ParseDirection(s)
	if err != nil {
		return propagation.AnyDirection // default on parse error
	}
	return d
}

// GetLengthUnit returns the length_unit value or the default.
func (c *TuningConfig) GetLengthUnit() string {
	if c.LengthUnit == nil || *c.LengthUnit == "" {
		return units.CM
	}
	return *c.LengthUnit
}

// GetCheckCracks returns the check_cracks value or the default.
func (c *TuningConfig) GetCheckCracks() bool {
	if c.CheckCracks == nil {
		return true
	}
	return *c.CheckCracks
}

// GetEstimateHits returns the estimate_hits value or the default.
func (c *TuningConfig) GetEstimateHits() bool {
	if c.EstimateHit == nil {
		return true
	}
	return *c.EstimateHit
}
