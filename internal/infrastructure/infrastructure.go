// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, record store, asset storage, cache, auth)
// that the property domain requires.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/pkg/auth"
	"github.com/JaimeStill/estate/pkg/cache"
	"github.com/JaimeStill/estate/pkg/database"
	"github.com/JaimeStill/estate/pkg/lifecycle"
	"github.com/JaimeStill/estate/pkg/mongodb"
	"github.com/JaimeStill/estate/pkg/storage"
)

// Infrastructure holds the core systems required by the domain modules.
// Database and Mongo are nil unless the records driver selects them.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Mongo     mongodb.System
	Records   properties.Store
	Storage   storage.System
	Cache     cache.System
	Auth      *auth.Verifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(&cfg.Logging, os.Stderr)

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Cache:     cache.New(&cfg.Cache, logger),
		Auth:      auth.New(&cfg.Auth, logger),
	}

	switch cfg.Records.Driver {
	case config.DriverPostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Records = properties.NewPostgresStore(db.Connection())
	case config.DriverMongo:
		client, err := mongodb.New(&cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("mongo init failed: %w", err)
		}
		infra.Mongo = client
		infra.Records = properties.NewMongoStore(client.Collection())
	case config.DriverMemory:
		logger.Warn("using in-memory record store; records are lost on restart")
		infra.Records = properties.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown records driver %q", cfg.Records.Driver)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = store

	return infra, nil
}

// NewLogger builds the root slog logger in the configured format.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Mongo != nil {
		if err := i.Mongo.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("mongo start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	return nil
}

// Checkers returns the readiness checkers for the configured record stores.
// The cache is excluded: reads fall through to the store when it is down.
func (i *Infrastructure) Checkers() []lifecycle.ReadinessChecker {
	var checkers []lifecycle.ReadinessChecker
	if i.Database != nil {
		checkers = append(checkers, i.Database)
	}
	if i.Mongo != nil {
		checkers = append(checkers, i.Mongo)
	}
	return checkers
}

// Degraded reports whether an optional system, currently the cache, is unavailable.
func (i *Infrastructure) Degraded() bool {
	return i.Cache != nil && !i.Cache.Ready()
}
