// Package config loads the agentterm configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/coordinatio/agentterm/internal/display"
)

// DefaultPath is the config file location relative to the user config dir.
const DefaultPath = "agentterm/config.toml"

// Config is the agentterm configuration schema.
type Config struct {
	Session SessionConfig `toml:"session"`
	Surface SurfaceConfig `toml:"surface"`
}

// SessionConfig controls session naming and launch defaults.
type SessionConfig struct {
	// Prefix seeds generated session names ("<prefix> <n>").
	Prefix string `toml:"prefix"`

	// Command is the default launch command for new sessions.
	Command string `toml:"command"`
}

// SurfaceConfig controls default display surface geometry. Zero width or
// height mean "derive from the host terminal".
type SurfaceConfig struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Position string `toml:"position"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Prefix:  "Agent",
			Command: "agent",
		},
		Surface: SurfaceConfig{
			Position: string(display.PositionRight),
		},
	}
}

// Load reads the config at path, applying defaults for unset fields.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// ResolvePath returns the config path: $AGENTTERM_CONFIG if set,
// otherwise DefaultPath under the user config directory.
func ResolvePath() string {
	if p := os.Getenv("AGENTTERM_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultPath
	}
	return filepath.Join(dir, DefaultPath)
}

// Geometry converts the surface section to a display geometry.
func (c *Config) Geometry() display.Geometry {
	return display.Geometry{
		Width:    c.Surface.Width,
		Height:   c.Surface.Height,
		Position: display.Position(c.Surface.Position),
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Session.Prefix == "" {
		cfg.Session.Prefix = def.Session.Prefix
	}
	if cfg.Session.Command == "" {
		cfg.Session.Command = def.Session.Command
	}
	if cfg.Surface.Position == "" {
		cfg.Surface.Position = def.Surface.Position
	}
}
