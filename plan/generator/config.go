package generator

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prodplan/prodplan/plan"
)

// RateSpec parameterizes per-occurrence quantity draws. Every occurrence draws
// u ~ Uniform[Min, Max) and records u*scale + shift, where recipe occurrences use
// scale 1 and shift 0.
type RateSpec struct {
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	AvailableScale float64 `yaml:"available_scale"`
	AvailableShift float64 `yaml:"available_shift"`
	DesiredScale   float64 `yaml:"desired_scale"`
	DesiredShift   float64 `yaml:"desired_shift"`
}

// DefaultRates makes available inputs abundant and desired outputs modest.
func DefaultRates() RateSpec {
	return RateSpec{
		Min:            0.1,
		Max:            10.0,
		AvailableScale: 10,
		AvailableShift: 100,
		DesiredScale:   0.5,
		DesiredShift:   0,
	}
}

// Config holds the generator parameters. Loaded from YAML via LoadConfig(path)
// or filled from CLI flags.
type Config struct {
	Items        int      `yaml:"items"`
	InputItems   int      `yaml:"input_items"`
	OutputItems  int      `yaml:"output_items"`
	Recipes      int      `yaml:"recipes"`
	Seed         int64    `yaml:"seed"`
	InstanceName string   `yaml:"instance_name,omitempty"`
	OutDir       string   `yaml:"outdir,omitempty"`
	Rates        RateSpec `yaml:"rates"`
}

// DefaultConfig returns a Config with default rates and output directory.
func DefaultConfig() Config {
	return Config{
		OutDir: "instances",
		Rates:  DefaultRates(),
	}
}

// EffectiveRates returns c.Rates, or DefaultRates when c.Rates is the zero value.
func (c Config) EffectiveRates() RateSpec {
	if c.Rates == (RateSpec{}) {
		return DefaultRates()
	}
	return c.Rates
}

// LoadConfig reads a YAML generator configuration.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing generator config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the item counts and rate parameters. All failures wrap
// plan.ErrInvalidConfiguration. Zero items or recipes are valid and yield an
// instance without recipes.
func (c Config) Validate() error {
	if c.InputItems < 0 {
		return fmt.Errorf("%w: input_items must be non-negative, got %d", plan.ErrInvalidConfiguration, c.InputItems)
	}
	if c.OutputItems < 0 {
		return fmt.Errorf("%w: output_items must be non-negative, got %d", plan.ErrInvalidConfiguration, c.OutputItems)
	}
	if c.InputItems+c.OutputItems > c.Items {
		return fmt.Errorf("%w: input_items (%d) + output_items (%d) exceeds items (%d)",
			plan.ErrInvalidConfiguration, c.InputItems, c.OutputItems, c.Items)
	}
	return validateRates(c.EffectiveRates())
}

func validateRates(r RateSpec) error {
	fields := []struct {
		name string
		val  float64
	}{
		{"rates.min", r.Min}, {"rates.max", r.Max},
		{"rates.available_scale", r.AvailableScale}, {"rates.available_shift", r.AvailableShift},
		{"rates.desired_scale", r.DesiredScale}, {"rates.desired_shift", r.DesiredShift},
	}
	for _, f := range fields {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %f", plan.ErrInvalidConfiguration, f.name, f.val)
		}
		if f.val < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %f", plan.ErrInvalidConfiguration, f.name, f.val)
		}
	}
	if r.Max < r.Min {
		return fmt.Errorf("%w: rates.max (%f) must not be below rates.min (%f)", plan.ErrInvalidConfiguration, r.Max, r.Min)
	}
	return nil
}
