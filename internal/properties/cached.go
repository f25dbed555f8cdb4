package properties

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/JaimeStill/estate/pkg/cache"
)

const (
	// cachePrefix namespaces every cached property view.
	cachePrefix = "property:"
	// generationKey counts committed mutations. It lives outside cachePrefix so
	// invalidation never resets it.
	generationKey = "generation:property"
)

// readThrough serves a read view from the cache, loading and storing it on a miss.
// Views are keyed by the mutation generation observed before the load, so a load
// that races a mutation can only populate a generation readers have left behind.
// Cache failures are logged and fall through to the store.
func readThrough[T any](ctx context.Context, m *manager, parts []string, load func() (T, error)) (T, error) {
	gen, err := m.cache.Generation(ctx, generationKey)
	if err != nil {
		m.logger.Warn("cache generation read failed", "error", err)
		return load()
	}

	key := cache.Key(cachePrefix+strconv.FormatInt(gen, 10)+":", parts...)

	if data, ok, err := m.cache.Get(ctx, key); err != nil {
		m.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		m.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Warn("cache encode failed", "key", key, "error", err)
		return v, nil
	}
	if err := m.cache.Set(ctx, key, data); err != nil {
		m.logger.Warn("cache write failed", "key", key, "error", err)
	}

	return v, nil
}

// invalidate advances the generation after a mutation commits, then drops the
// cached views of earlier generations.
func (m *manager) invalidate(ctx context.Context) {
	if _, err := m.cache.Advance(ctx, generationKey); err != nil {
		m.logger.Warn("cache generation advance failed", "error", err)
	}
	if _, err := m.cache.Invalidate(ctx, cachePrefix); err != nil {
		m.logger.Warn("cache invalidation failed", "error", err)
	}
}
