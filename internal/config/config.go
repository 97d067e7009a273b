// Package config loads dbplat settings and platform registration data.
//
// Settings are layered, lowest precedence first: built-in defaults, a TOML
// or YAML file, DBPLAT_* environment variables, then command-line flags
// that were explicitly set.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const (
	DefaultDriver    = "pgx"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Drivers lists the database/sql driver names the binary links in.
var Drivers = []string{"pgx", "postgres", "mysql"}

// Config holds all dbplat settings.
type Config struct {
	Connection Connection `koanf:"connection"`
	Log        Log        `koanf:"log"`
	Registry   Registry   `koanf:"registry"`
}

// Connection describes how to reach the database under inspection.
type Connection struct {
	Driver  string        `koanf:"driver"`
	DSN     string        `koanf:"dsn"`
	Timeout time.Duration `koanf:"timeout"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Registry configures platform resolution.
type Registry struct {
	// File holds extra [[platform]] entries merged over the built-in ones.
	File string `koanf:"file"`

	// Fallbacks maps a protocol family to the platform used for vendors
	// that have no registration of their own. Empty means no fallback.
	Fallbacks map[string]string `koanf:"fallbacks"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Connection: Connection{Driver: DefaultDriver, Timeout: DefaultTimeout},
		Log:        Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Validate checks the settings that do not depend on a live connection.
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Connection.Driver) {
		return fmt.Errorf("connection.driver: unsupported driver %q (available: %s)", c.Connection.Driver, strings.Join(Drivers, ", "))
	}
	if c.Connection.Timeout < 0 {
		return fmt.Errorf("connection.timeout: must not be negative, got %s", c.Connection.Timeout)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q (use text or json)", c.Log.Format)
	}
	for family, target := range c.Registry.Fallbacks {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("registry.fallbacks.%s: platform name is empty", family)
		}
	}
	return nil
}

// SlogLevel parses Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
