// Package config provides configuration loading and management for
// imgpyramid. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pyramid parameters
	Pyramid struct {
		// Levels is the number of resolution levels to generate
		Levels int `yaml:"levels"`

		// StartingFactors overrides the coarsest level's shrink
		// factors per dimension; empty means the default 2^(levels-1)
		StartingFactors []int `yaml:"startingFactors"`

		// MaxError bounds the Gaussian kernel truncation error
		MaxError float64 `yaml:"maxError"`
	} `yaml:"pyramid"`

	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many goroutines to use inside the
		// smoothing pass
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Dir is the directory where level images are written
		Dir string `yaml:"dir"`

		// Format selects the image encoding, "jpeg" or "png"
		Format string `yaml:"format"`

		// Stats controls whether a per-level statistics table is
		// printed after a build
		Stats bool `yaml:"stats"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pyramid.Levels = 3
	cfg.Pyramid.MaxError = 0.01

	cfg.Processing.NumWorkers = runtime.NumCPU()

	cfg.Output.Dir = "pyramid_levels"
	cfg.Output.Format = "jpeg"
	cfg.Output.Stats = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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
	return SaveConfig(DefaultConfig(), configPath)
}
