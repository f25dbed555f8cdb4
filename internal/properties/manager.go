package properties

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/internal/assets"
	"github.com/JaimeStill/estate/pkg/cache"
	"github.com/JaimeStill/estate/pkg/pagination"
)

// Option configures the property System.
type Option func(*manager)

// WithCache serves read views through c and invalidates it on every mutation.
func WithCache(c cache.System) Option {
	return func(m *manager) { m.cache = c }
}

// WithClock replaces the time source used by reconciliation.
func WithClock(now func() time.Time) Option {
	return func(m *manager) { m.now = now }
}

type manager struct {
	store      Store
	assets     assets.System
	cache      cache.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates the property System over a record store and an asset store.
func New(
	store Store,
	images assets.System,
	logger *slog.Logger,
	pagination pagination.Config,
	opts ...Option,
) System {
	m := &manager{
		store:      store,
		assets:     images,
		cache:      cache.Noop(),
		logger:     logger.With("system", "properties"),
		pagination: pagination,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Handler(maxUploadSize int64, admin func(http.Handler) http.Handler) *Handler {
	return NewHandler(m, m.logger, m.pagination, maxUploadSize, admin)
}

func (m *manager) Create(ctx context.Context, cmd CreateCommand) (*Property, error) {
	if cmd.Patch.Empty() && cmd.Image == nil {
		return nil, fmt.Errorf("%w: no property attributes supplied", ErrValidation)
	}

	var rec Property
	if err := cmd.Patch.Apply(&rec); err != nil {
		return nil, err
	}

	if cmd.Image != nil {
		ref, err := m.storeImage(ctx, cmd.Image)
		if err != nil {
			return nil, err
		}
		rec.FeatureImage = ref
	}

	p, err := m.store.Insert(ctx, rec)
	if err != nil {
		m.assets.Remove(ctx, rec.FeatureImage)
		return nil, m.storeError("insert", err)
	}

	m.invalidate(ctx)
	m.logger.Info("property created", "id", p.ID, "feature_image", p.FeatureImage)
	return p, nil
}

func (m *manager) Find(ctx context.Context, id uuid.UUID) (*Property, error) {
	p, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, m.storeError("get", err)
	}
	return p, nil
}

func (m *manager) List(ctx context.Context) ([]Property, error) {
	return readThrough(ctx, m, []string{"list"}, func() ([]Property, error) {
		return m.find(ctx, Filter{})
	})
}

func (m *manager) Page(ctx context.Context, page pagination.PageRequest, filter Filter) (*pagination.PageResult[Property], error) {
	page.Normalize(m.pagination)

	key := []string{"page", page.Values().Encode(), filter.Key()}
	return readThrough(ctx, m, key, func() (*pagination.PageResult[Property], error) {
		result, err := m.store.FindPage(ctx, filter, page)
		if err != nil {
			return nil, m.storeError("page", err)
		}
		return result, nil
	})
}

func (m *manager) Count(ctx context.Context) (int, error) {
	return readThrough(ctx, m, []string{"count"}, func() (int, error) {
		n, err := m.store.Count(ctx)
		if err != nil {
			return 0, m.storeError("count", err)
		}
		return n, nil
	})
}

// Category matches the stored propertyType for c exactly. An unknown category
// matches nothing.
func (m *manager) Category(ctx context.Context, c Category) ([]Property, error) {
	stored := c.Stored()
	if stored == "" {
		return []Property{}, nil
	}

	return readThrough(ctx, m, []string{"category", stored}, func() ([]Property, error) {
		return m.find(ctx, Filter{PropertyType: &stored})
	})
}

func (m *manager) Search(ctx context.Context, criteria SearchCriteria) ([]Property, error) {
	filter := criteria.Filter()
	return readThrough(ctx, m, []string{"search", filter.Key()}, func() ([]Property, error) {
		return m.find(ctx, filter)
	})
}

func (m *manager) ByBuilder(ctx context.Context, name string) ([]Property, error) {
	return readThrough(ctx, m, []string{"builder", name}, func() ([]Property, error) {
		return m.find(ctx, Filter{BuilderName: &name})
	})
}

// Update stores a replacement image before the record changes and removes the
// previous image only once the record no longer references it.
func (m *manager) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Property, error) {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, m.storeError("get", err)
	}

	rec := existing.Clone()
	if err := cmd.Patch.Apply(&rec); err != nil {
		return nil, err
	}

	previous := existing.FeatureImage
	if cmd.Image != nil {
		ref, err := m.storeImage(ctx, cmd.Image)
		if err != nil {
			return nil, err
		}
		rec.FeatureImage = ref
	}

	p, err := m.store.Update(ctx, id, rec)
	if err != nil {
		if cmd.Image != nil {
			m.assets.Remove(ctx, rec.FeatureImage)
		}
		return nil, m.storeError("update", err)
	}

	if cmd.Image != nil && previous != "" && previous != p.FeatureImage {
		m.assets.Remove(ctx, previous)
	}

	m.invalidate(ctx)
	m.logger.Info("property updated", "id", id, "image_replaced", cmd.Image != nil)
	return p, nil
}

// Delete removes the record and then its image. The image removal is best-effort;
// the delete is complete once the record is gone.
func (m *manager) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return m.storeError("get", err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return m.storeError("delete", err)
	}

	m.assets.Remove(ctx, existing.FeatureImage)

	m.invalidate(ctx)
	m.logger.Info("property deleted", "id", id)
	return nil
}

func (m *manager) find(ctx context.Context, f Filter) ([]Property, error) {
	props, err := m.store.Find(ctx, f)
	if err != nil {
		return nil, m.storeError("find", err)
	}
	return props, nil
}

func (m *manager) storeImage(ctx context.Context, img *Upload) (string, error) {
	if err := m.assets.Validate(img.Data, img.Filename); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ref, err := m.assets.Store(ctx, img.Data, img.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return ref, nil
}

// storeError passes not-found and validation failures through and classifies
// everything else as a persistence failure.
func (m *manager) storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
