package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "stlview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "stlview")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "stlview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "stlview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects settings the viewer cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Projection.FovDegrees <= 0 || c.Projection.FovDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v outside (0, 180)", ErrInvalid, c.Projection.FovDegrees)
	case c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near:
		return fmt.Errorf("%w: near %v far %v", ErrInvalid, c.Projection.Near, c.Projection.Far)
	case c.Scene.GlobalScale <= 0:
		return fmt.Errorf("%w: global_scale %v", ErrInvalid, c.Scene.GlobalScale)
	case c.Screenshot.Format != "" && c.Screenshot.Format != "png" && c.Screenshot.Format != "bmp":
		return fmt.Errorf("%w: screenshot format %q", ErrInvalid, c.Screenshot.Format)
	}
	for i, o := range c.Scene.Objects {
		if o.Path == "" {
			return fmt.Errorf("%w: object %d has no path", ErrInvalid, i)
		}
		if o.Scale <= 0 {
			return fmt.Errorf("%w: object %d scale %v", ErrInvalid, i, o.Scale)
		}
	}
	return nil
}
