// Package cache provides a byte-oriented response cache backed by Redis,
// with a no-op implementation for when caching is disabled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/estate/pkg/lifecycle"
)

const scanCount = 100

// System stores serialized responses under string keys.
type System interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the configured TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Invalidate deletes every key starting with prefix and returns how many were removed.
	Invalidate(ctx context.Context, prefix string) (int, error)
	// Generation returns the current value of the named counter, zero when unset.
	Generation(ctx context.Context, name string) (int64, error)
	// Advance increments the named counter and returns the new value.
	// Counters carry no TTL.
	Advance(ctx context.Context, name string) (int64, error)
	// Ready reports whether the backing store answered its startup ping.
	Ready() bool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// Key builds a cache key of the form prefix + hex(sha256(parts joined by NUL)).
func Key(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return prefix + hex.EncodeToString(sum[:])
}

// New returns a Redis-backed cache when cfg.Enabled, otherwise a no-op cache.
func New(cfg *Config, logger *slog.Logger) System {
	logger = logger.With("system", "cache")

	if !cfg.Enabled {
		return Noop()
	}

	return &redisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl:    cfg.TTLDuration(),
		logger: logger,
	}
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	ready  atomic.Bool
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, prefix string) (int, error) {
	var (
		cursor uint64
		keys   []string
	)

	for {
		batch, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("cache scan %s: %w", prefix, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return 0, nil
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cache delete %d keys: %w", len(keys), err)
	}

	c.logger.Debug("cache invalidated", "prefix", prefix, "keys", len(keys))
	return len(keys), nil
}

func (c *redisCache) Generation(ctx context.Context, name string) (int64, error) {
	gen, err := c.client.Get(ctx, name).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache generation %s: %w", name, err)
	}
	return gen, nil
}

func (c *redisCache) Advance(ctx context.Context, name string) (int64, error) {
	gen, err := c.client.Incr(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("cache advance %s: %w", name, err)
	}
	return gen, nil
}

func (c *redisCache) Ready() bool {
	return c.ready.Load()
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache client")

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return
		}
		c.ready.Store(true)
		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)
		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}

type noop struct{}

// Noop returns a cache that stores nothing.
func Noop() System {
	return noop{}
}

func (noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noop) Set(context.Context, string, []byte) error         { return nil }
func (noop) Invalidate(context.Context, string) (int, error)   { return 0, nil }
func (noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (noop) Advance(context.Context, string) (int64, error)    { return 0, nil }
func (noop) Ready() bool                                       { return true }
func (noop) Start(*lifecycle.Coordinator) error                { return nil }
