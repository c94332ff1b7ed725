// Package config loads the workspace-level .fuzzpanel/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the workspace configuration. The zero value is usable.
type Config struct {
	LogLevel string        `yaml:"log_level,omitempty"`
	Grids    GridsConfig   `yaml:"grids,omitempty"`
	Options  OptionsConfig `yaml:"options,omitempty"`
}

// GridsConfig controls how classified results are bound to the grids.
type GridsConfig struct {
	// ClearStale empties a grid when a later load has no rows for it.
	// By default the previous rows are left in place.
	ClearStale bool `yaml:"clear_stale,omitempty"`
}

// OptionsConfig controls the fuzzer options section of the panel.
type OptionsConfig struct {
	Visible bool `yaml:"visible,omitempty"`
}

// Path returns the config file location for a workspace directory.
func Path(dir string) string {
	return filepath.Join(dir, ".fuzzpanel", "config.yaml")
}

// Load reads .fuzzpanel/config.yaml from dir. A missing file yields the
// defaults, not an error. FUZZPANEL_LOG_LEVEL overrides log_level.
func Load(dir string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}

	data, err := os.ReadFile(Path(dir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse workspace config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read workspace config: %w", err)
	}

	if lvl := os.Getenv("FUZZPANEL_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}
