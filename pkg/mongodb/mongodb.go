// Package mongodb provides the MongoDB client behind the document property store.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaimeStill/estate/pkg/lifecycle"
)

// System manages a MongoDB client and lifecycle coordination.
type System interface {
	// Collection returns the configured property collection.
	Collection() *mongo.Collection
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type client struct {
	client      *mongo.Client
	collection  *mongo.Collection
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New configures the client. The driver connects lazily; Start pings the server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnTimeoutDuration())

	c, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	return &client{
		client:      c,
		collection:  c.Database(cfg.Database).Collection(cfg.Collection),
		logger:      logger.With("system", "mongodb", "database", cfg.Database),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (c *client) Collection() *mongo.Collection {
	return c.collection
}

func (c *client) Ready() bool {
	return c.ready.Load()
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting mongodb client")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), c.connTimeout)
		defer cancel()

		if err := c.client.Ping(ctx, nil); err != nil {
			c.logger.Error("mongodb ping failed", "error", err)
			return
		}

		c.ready.Store(true)
		c.logger.Info("mongodb connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), c.connTimeout)
		defer cancel()

		if err := c.client.Disconnect(ctx); err != nil {
			c.logger.Error("mongodb disconnect failed", "error", err)
			return
		}

		c.logger.Info("mongodb connection closed")
	})

	return nil
}
