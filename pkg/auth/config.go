package auth

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls bearer token verification for administrative routes.
// When Enabled is false the admin gate admits every request.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Secret  string `toml:"secret"`
	Issuer  string `toml:"issuer"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled string
	Secret  string
	Issuer  string
}

// Finalize applies environment variable overrides and validation. There are no defaults:
// the secret must come from configuration.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled && len(c.Secret) < 16 {
		return fmt.Errorf("secret must be at least 16 bytes when auth is enabled")
	}
	return nil
}
