package main

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/pkg/lifecycle"
)

// reconciler runs the orphaned-image sweep on a cron schedule.
type reconciler struct {
	cron     *cron.Cron
	sys      properties.System
	opts     properties.ReconcileOptions
	schedule string
	logger   *slog.Logger
}

func newReconciler(cfg *config.ReconcileConfig, sys properties.System, logger *slog.Logger) *reconciler {
	logger = logger.With("system", "reconcile")

	return &reconciler{
		cron: cron.New(
			cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		sys: sys,
		opts: properties.ReconcileOptions{
			Grace:   cfg.GraceDuration(),
			Workers: cfg.Workers,
		},
		schedule: cfg.Schedule,
		logger:   logger,
	}
}

// Start schedules the sweep once startup completes. An empty schedule leaves it disabled.
func (r *reconciler) Start(lc *lifecycle.Coordinator) error {
	if r.schedule == "" {
		r.logger.Info("reconcile schedule disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() { r.run(lc.Context()) }); err != nil {
		return err
	}

	lc.OnStartup(func() {
		r.cron.Start()
		r.logger.Info("reconcile scheduled", "schedule", r.schedule, "grace", r.opts.Grace)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-r.cron.Stop().Done()
		r.logger.Info("reconcile scheduler stopped")
	})

	return nil
}

func (r *reconciler) run(ctx context.Context) {
	report, err := r.sys.Reconcile(ctx, r.opts)
	if err != nil {
		r.logger.Error("reconcile failed", "error", err)
		return
	}

	r.logger.Info(
		"reconcile complete",
		"records", report.Records,
		"assets", report.Assets,
		"removed", len(report.Removed),
		"deferred", len(report.Deferred),
		"missing", len(report.Missing),
	)
}
