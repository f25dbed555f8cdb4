package properties

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultReconcileWorkers = 4

// ReconcileOptions controls a reconciliation sweep.
type ReconcileOptions struct {
	// Grace protects recently stored images, which may belong to a create still in flight.
	Grace time.Duration
	// DryRun reports orphans without removing them.
	DryRun bool
	// Workers bounds concurrent removals. Zero uses a default.
	Workers int
}

// MissingImage is a record whose featureImage has no stored asset.
type MissingImage struct {
	ID           uuid.UUID `json:"id"`
	FeatureImage string    `json:"featureImage"`
}

// ReconcileReport summarizes a sweep.
type ReconcileReport struct {
	Records  int            `json:"records"`
	Assets   int            `json:"assets"`
	Orphans  []string       `json:"orphans"`
	Removed  []string       `json:"removed"`
	Deferred []string       `json:"deferred"`
	Missing  []MissingImage `json:"missing"`
	DryRun   bool           `json:"dry_run"`
}

// Reconcile compares stored images with the references records hold. Unreferenced
// images older than the grace period are removed; younger ones are deferred to a
// later sweep. Running it repeatedly converges on the same state.
func (m *manager) Reconcile(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	records, err := m.store.Find(ctx, Filter{})
	if err != nil {
		return nil, m.storeError("find", err)
	}

	stored, err := m.assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageIO, err)
	}

	report := &ReconcileReport{
		Records:  len(records),
		Assets:   len(stored),
		Orphans:  []string{},
		Removed:  []string{},
		Deferred: []string{},
		Missing:  []MissingImage{},
		DryRun:   opts.DryRun,
	}

	referenced := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.FeatureImage != "" {
			referenced[r.FeatureImage] = struct{}{}
		}
	}

	present := make(map[string]struct{}, len(stored))
	cutoff := m.now().Add(-opts.Grace)
	for _, obj := range stored {
		present[obj.Key] = struct{}{}
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if !obj.LastModified.IsZero() && obj.LastModified.After(cutoff) {
			report.Deferred = append(report.Deferred, obj.Key)
			continue
		}
		report.Orphans = append(report.Orphans, obj.Key)
	}

	for _, r := range records {
		if r.FeatureImage == "" {
			continue
		}
		if _, ok := present[r.FeatureImage]; !ok {
			report.Missing = append(report.Missing, MissingImage{ID: r.ID, FeatureImage: r.FeatureImage})
		}
	}

	if !opts.DryRun && len(report.Orphans) > 0 {
		report.Removed = m.removeOrphans(ctx, report.Orphans, opts.Workers)
	}

	m.logger.Info(
		"reconciliation complete",
		"records", report.Records,
		"assets", report.Assets,
		"orphans", len(report.Orphans),
		"removed", len(report.Removed),
		"deferred", len(report.Deferred),
		"missing", len(report.Missing),
		"dry_run", report.DryRun,
	)

	return report, nil
}

func (m *manager) removeOrphans(ctx context.Context, refs []string, workers int) []string {
	if workers < 1 {
		workers = defaultReconcileWorkers
	}

	var (
		mu      sync.Mutex
		removed = make([]string, 0, len(refs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			m.assets.Remove(gctx, ref)

			if ok, err := m.assets.Exists(gctx, ref); err == nil && !ok {
				mu.Lock()
				removed = append(removed, ref)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Warn("reconciliation interrupted", "error", err)
	}

	slices.Sort(removed)
	return removed
}
