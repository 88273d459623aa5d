package generator

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodplan/prodplan/plan"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTempYAML(t, `
items: 20
input_items: 3
output_items: 2
recipes: 15
seed: 42
instance_name: rand_20_15
rates:
  min: 1
  max: 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Items)
	assert.Equal(t, 3, cfg.InputItems)
	assert.Equal(t, 2, cfg.OutputItems)
	assert.Equal(t, 15, cfg.Recipes)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "rand_20_15", cfg.InstanceName)
	// absent fields keep their defaults
	assert.Equal(t, "instances", cfg.OutDir)
	assert.Equal(t, 1.0, cfg.Rates.Min)
	assert.Equal(t, 2.0, cfg.Rates.Max)
	assert.Equal(t, DefaultRates().AvailableShift, cfg.Rates.AvailableShift)
	assert.Equal(t, DefaultRates().DesiredScale, cfg.Rates.DesiredScale)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_UnknownFieldRejected(t *testing.T) {
	path := writeTempYAML(t, "items: 5\nrecipe: 3\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipe")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Items: 10, InputItems: 2, OutputItems: 3, Recipes: 5}, false},
		{"inputs and outputs fill items", Config{Items: 5, InputItems: 2, OutputItems: 3, Recipes: 5}, false},
		{"zero items and recipes", Config{}, false},
		{"negative recipes", Config{Items: 3, Recipes: -1}, false},
		{"sum exceeds items", Config{Items: 4, InputItems: 3, OutputItems: 2, Recipes: 5}, true},
		{"negative input items", Config{Items: 4, InputItems: -1, Recipes: 5}, true},
		{"negative output items", Config{Items: 4, OutputItems: -1, Recipes: 5}, true},
		{"max below min", Config{Items: 4, Recipes: 1, Rates: RateSpec{Min: 5, Max: 1}}, true},
		{"negative scale", Config{Items: 4, Recipes: 1, Rates: RateSpec{Min: 1, Max: 2, AvailableScale: -1}}, true},
		{"nan rate", Config{Items: 4, Recipes: 1, Rates: RateSpec{Min: math.NaN(), Max: 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, plan.ErrInvalidConfiguration), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_EffectiveRates_ZeroMeansDefault(t *testing.T) {
	assert.Equal(t, DefaultRates(), Config{}.EffectiveRates())
	custom := RateSpec{Min: 1, Max: 1}
	assert.Equal(t, custom, Config{Rates: custom}.EffectiveRates())
}
