package main

import (
	"testing"
	"time"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/properties"
)

func TestRunMemoryDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvRecordsDriver, config.DriverMemory)
	t.Setenv("ESTATE_STORAGE_LOCAL_ROOT", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	opts := properties.ReconcileOptions{Grace: time.Hour, DryRun: true, Workers: 2}
	if code := run(cfg, opts); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}
