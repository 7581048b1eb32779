package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ShapeCylinder, cfg.Phantom.Shape)
	assert.Greater(t, cfg.Processing.NumCores, 0)
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sampling.MaxSamplingRadius = 12.5
	cfg.Sampling.RandomSeed = 99
	cfg.Phantom.Shape = ShapeSphere
	cfg.Phantom.Centre = []float64{20, 21, 22}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("sampling:\n  pixelWidth: 0.5\nphantom:\n  shape: box\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Sampling.PixelWidth)
	assert.Equal(t, ShapeBox, cfg.Phantom.Shape)
	assert.Equal(t, DefaultConfig().Sampling.MaxSamplingRadius, cfg.Sampling.MaxSamplingRadius)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sampling: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero radius", func(c *Config) { c.Sampling.MaxSamplingRadius = 0 }},
		{"negative pixel width", func(c *Config) { c.Sampling.PixelWidth = -1 }},
		{"negative spacing", func(c *Config) { c.Processing.MinSeedSpacing = -2 }},
		{"zero depth", func(c *Config) { c.Phantom.Depth = 0 }},
		{"unknown shape", func(c *Config) { c.Phantom.Shape = "torus" }},
		{"short centre", func(c *Config) { c.Phantom.Centre = []float64{1, 2} }},
		{"inverted cylinder", func(c *Config) { c.Phantom.ZMin, c.Phantom.ZMax = 50, 40 }},
		{"short box", func(c *Config) {
			c.Phantom.Shape = ShapeBox
			c.Phantom.BoxMax = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
