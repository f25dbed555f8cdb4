package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	EnvReconcileSchedule = "ESTATE_RECONCILE_SCHEDULE"
	EnvReconcileGrace    = "ESTATE_RECONCILE_GRACE"
	EnvReconcileWorkers  = "ESTATE_RECONCILE_WORKERS"
)

// ReconcileConfig controls the orphaned-image sweep. An empty Schedule disables
// the in-process scheduler; the sweep can still run from cmd/reconcile.
type ReconcileConfig struct {
	Schedule string `toml:"schedule"`
	Grace    string `toml:"grace"`
	Workers  int    `toml:"workers"`
}

// GraceDuration returns Grace as a time.Duration.
func (c *ReconcileConfig) GraceDuration() time.Duration {
	return duration(c.Grace)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReconcileConfig) Finalize() error {
	if c.Grace == "" {
		c.Grace = "1h"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}

	envString(EnvReconcileSchedule, &c.Schedule)
	envString(EnvReconcileGrace, &c.Grace)
	if v := os.Getenv(EnvReconcileWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ReconcileConfig) Merge(overlay *ReconcileConfig) {
	mergeString(&c.Schedule, overlay.Schedule)
	mergeString(&c.Grace, overlay.Grace)
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *ReconcileConfig) validate() error {
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
		}
	}
	d, err := time.ParseDuration(c.Grace)
	if err != nil {
		return fmt.Errorf("invalid grace: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("grace must not be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
