// Package storage provides blob storage operations with local disk, Azure Blob Storage,
// and S3 implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/estate/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that prepares the backing container, bucket, or directory.
	Start(lc *lifecycle.Coordinator) error
	// Create writes data to a new blob at the given key. It never overwrites:
	// if a blob already exists at key, ErrExists is returned.
	Create(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must close Body.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Find returns metadata for the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Find(ctx context.Context, key string) (*Object, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns metadata for every blob whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Blob is an open blob stream with its content metadata.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Object describes a stored blob.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}

// New creates the storage system selected by cfg.Provider.
// Clients are constructed here; no remote calls are made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderLocal:
		return newLocal(&cfg.Local, logger), nil
	case ProviderAzure:
		return newAzure(&cfg.Azure, logger)
	case ProviderS3:
		return newS3(&cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}
