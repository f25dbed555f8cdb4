// Command reconcile runs one orphaned-image sweep against the configured record
// and asset stores and prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/estate/internal/api"
	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/infrastructure"
	"github.com/JaimeStill/estate/internal/properties"
)

func main() {
	var (
		dryRun  = flag.Bool("dry-run", false, "Report orphans without removing them")
		grace   = flag.Duration("grace", -1, "Minimum orphan age before removal (default from config)")
		workers = flag.Int("workers", 0, "Concurrent removals (default from config)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	opts := properties.ReconcileOptions{
		Grace:   cfg.Reconcile.GraceDuration(),
		DryRun:  *dryRun,
		Workers: cfg.Reconcile.Workers,
	}
	if *grace >= 0 {
		opts.Grace = *grace
	}
	if *workers > 0 {
		opts.Workers = *workers
	}

	os.Exit(run(cfg, opts))
}

// run performs the sweep and returns the process exit code. Infrastructure is
// shut down before it returns so connections drain on every path.
func run(cfg *config.Config, opts properties.ReconcileOptions) int {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Printf("failed to initialize infrastructure: %v", err)
		return 1
	}
	if err := infra.Start(); err != nil {
		log.Printf("failed to start infrastructure: %v", err)
		return 1
	}
	infra.Lifecycle.WaitForStartup()
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			infra.Logger.Error("shutdown failed", "error", err)
		}
	}()

	if !infra.Lifecycle.Check(infra.Checkers()...) {
		infra.Logger.Error("record store unavailable")
		return 1
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := domain.Properties.Reconcile(ctx, opts)
	if err != nil {
		infra.Logger.Error("reconcile failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		infra.Logger.Error("failed to write report", "error", err)
		return 1
	}
	return 0
}
