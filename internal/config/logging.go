package config

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	EnvLoggingLevel  = "ESTATE_LOG_LEVEL"
	EnvLoggingFormat = "ESTATE_LOG_FORMAT"
)

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel returns Level as a slog.Level. Finalize guarantees it parses.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.Level))
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	envString(EnvLoggingLevel, &c.Level)
	envString(EnvLoggingFormat, &c.Format)

	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Level)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	mergeString(&c.Level, overlay.Level)
	mergeString(&c.Format, overlay.Format)
}
