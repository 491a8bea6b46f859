// Package config handles loading and saving mg configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/mg/config.yaml
//
// Everything has a working default; the file only needs to exist when the
// defaults are wrong for a setup (unusual data location, different physics
// feel, tighter zoom bounds).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDirEnvVar overrides where mg looks for market data files.
const DataDirEnvVar = "MARKETGRAPH_DIR"

// GraphConfig controls graph assembly.
type GraphConfig struct {
	MaxNodes       int     `yaml:"max_nodes,omitempty"`       // cap on displayed markets
	MinCorrelation float64 `yaml:"min_correlation,omitempty"` // weakest edge kept
	HotTrades      bool    `yaml:"hot_trades,omitempty"`      // derive signals when feed has none
}

// PhysicsConfig tunes the force simulation.
type PhysicsConfig struct {
	LinkDistance   float64 `yaml:"link_distance,omitempty"`
	LinkStrength   float64 `yaml:"link_strength,omitempty"`
	ChargeStrength float64 `yaml:"charge_strength,omitempty"`
	ChargeRadius   float64 `yaml:"charge_radius,omitempty"`
	CollidePadding float64 `yaml:"collide_padding,omitempty"`
	CenterStrength float64 `yaml:"center_strength,omitempty"`
	VelocityDecay  float64 `yaml:"velocity_decay,omitempty"`
}

// ViewConfig tunes the viewport controller.
type ViewConfig struct {
	MinScale        float64       `yaml:"min_scale,omitempty"`
	MaxScale        float64       `yaml:"max_scale,omitempty"`
	MaxClusterZoom  float64       `yaml:"max_cluster_zoom,omitempty"`
	ZoomDuration    time.Duration `yaml:"zoom_duration,omitempty"`
	ClusterDuration time.Duration `yaml:"cluster_duration,omitempty"`
}

// Config is the top-level configuration for mg.
type Config struct {
	// DataDir is where market data files live; empty means auto-detect
	// (env var, then cwd).
	DataDir string        `yaml:"data_dir,omitempty"`
	Graph   GraphConfig   `yaml:"graph,omitempty"`
	Physics PhysicsConfig `yaml:"physics,omitempty"`
	View    ViewConfig    `yaml:"view,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Graph: GraphConfig{
			MaxNodes:       150,
			MinCorrelation: 0.3,
			HotTrades:      true,
		},
		View: ViewConfig{
			MinScale:       0.1,
			MaxScale:       8,
			MaxClusterZoom: 2.5,
		},
	}
}

// ConfigDir returns the XDG config directory for mg.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mg")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mg")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolveDataDir picks the data directory: explicit config wins, then the
// MARKETGRAPH_DIR environment variable, then the current directory.
func (c Config) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
