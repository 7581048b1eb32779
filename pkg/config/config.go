// Package config provides configuration loading and management for maxellipsoid.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Phantom shapes understood by the CLI
const (
	ShapeCylinder = "cylinder"
	ShapeSphere   = "sphere"
	ShapeBox      = "box"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Sampling parameters
	Sampling struct {
		// MaxSamplingRadius is the expected largest feature radius, in the
		// same units as PixelWidth
		MaxSamplingRadius float64 `yaml:"maxSamplingRadius"`

		// PixelWidth is the physical size of one voxel
		PixelWidth float64 `yaml:"pixelWidth"`

		// RandomSeed makes runs reproducible
		RandomSeed int64 `yaml:"randomSeed"`
	} `yaml:"sampling"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`

		// MinSeedSpacing drops seeds closer than this to an earlier seed (0 keeps all)
		MinSeedSpacing float64 `yaml:"minSeedSpacing"`
	} `yaml:"processing"`

	// Phantom describes the synthetic volume grown into
	Phantom struct {
		Shape  string `yaml:"shape"`
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Depth  int    `yaml:"depth"`

		// Radius and Centre apply to cylinder and sphere; a cylinder only uses
		// the x and y of Centre
		Radius float64   `yaml:"radius"`
		Centre []float64 `yaml:"centre,flow"`

		// ZMin and ZMax bound the cylinder
		ZMin float64 `yaml:"zMin"`
		ZMax float64 `yaml:"zMax"`

		// BoxMin and BoxMax are the box corners
		BoxMin []float64 `yaml:"boxMin,flow"`
		BoxMax []float64 `yaml:"boxMax,flow"`
	} `yaml:"phantom"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Sampling.MaxSamplingRadius = 8
	cfg.Sampling.PixelWidth = 1
	cfg.Sampling.RandomSeed = 1

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.MinSeedSpacing = 0

	// A 46 voxel wide cylinder, 100 slices tall
	cfg.Phantom.Shape = ShapeCylinder
	cfg.Phantom.Width = 64
	cfg.Phantom.Height = 64
	cfg.Phantom.Depth = 120
	cfg.Phantom.Radius = 23
	cfg.Phantom.Centre = []float64{32, 32, 60}
	cfg.Phantom.ZMin = 10
	cfg.Phantom.ZMax = 110
	cfg.Phantom.BoxMin = []float64{8, 8, 8}
	cfg.Phantom.BoxMax = []float64{56, 40, 100}

	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the values the CLI depends on
func (c *Config) Validate() error {
	if !(c.Sampling.MaxSamplingRadius > 0) {
		return fmt.Errorf("%w: sampling.maxSamplingRadius must be positive", ErrInvalidConfig)
	}
	if !(c.Sampling.PixelWidth > 0) {
		return fmt.Errorf("%w: sampling.pixelWidth must be positive", ErrInvalidConfig)
	}
	if c.Processing.MinSeedSpacing < 0 {
		return fmt.Errorf("%w: processing.minSeedSpacing must not be negative", ErrInvalidConfig)
	}

	p := &c.Phantom
	if p.Width <= 0 || p.Height <= 0 || p.Depth <= 0 {
		return fmt.Errorf("%w: phantom dimensions must be positive, got %dx%dx%d",
			ErrInvalidConfig, p.Width, p.Height, p.Depth)
	}
	switch p.Shape {
	case ShapeCylinder, ShapeSphere:
		if !(p.Radius > 0) {
			return fmt.Errorf("%w: phantom.radius must be positive", ErrInvalidConfig)
		}
		if len(p.Centre) != 3 {
			return fmt.Errorf("%w: phantom.centre needs 3 values, got %d", ErrInvalidConfig, len(p.Centre))
		}
		if p.Shape == ShapeCylinder && !(p.ZMax > p.ZMin) {
			return fmt.Errorf("%w: phantom.zMax must exceed zMin", ErrInvalidConfig)
		}
	case ShapeBox:
		if len(p.BoxMin) != 3 || len(p.BoxMax) != 3 {
			return fmt.Errorf("%w: phantom.boxMin and boxMax need 3 values each", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown phantom shape %q", ErrInvalidConfig, p.Shape)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
