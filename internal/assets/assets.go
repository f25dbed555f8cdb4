// Package assets stores uploaded property images under generated, never-reused references.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/JaimeStill/estate/pkg/storage"
)

const maxNameAttempts = 100

// System stores and removes image assets.
type System interface {
	// Store writes data under a fresh reference derived from the current time and the
	// extension of nameHint. It never overwrites an existing asset.
	Store(ctx context.Context, data []byte, nameHint string) (string, error)
	// Remove deletes the asset best-effort. A missing asset is not an error and
	// failures are logged rather than returned.
	Remove(ctx context.Context, ref string)
	// Exists reports whether an asset is stored under ref.
	Exists(ctx context.Context, ref string) (bool, error)
	// Open streams the asset stored under ref. The caller closes Body.
	Open(ctx context.Context, ref string) (*storage.Blob, error)
	// List returns every stored asset.
	List(ctx context.Context) ([]storage.Object, error)
	// Validate checks upload bytes before they are stored.
	Validate(data []byte, filename string) error
}

// Option configures a System.
type Option func(*store)

// WithClock replaces the time source used to generate references.
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

type store struct {
	blobs   storage.System
	maxSize int64
	now     func() time.Time
	logger  *slog.Logger
}

// New creates an asset System over blobs. maxSize bounds accepted uploads; zero disables the check.
func New(blobs storage.System, maxSize int64, logger *slog.Logger, opts ...Option) System {
	s := &store{
		blobs:   blobs,
		maxSize: maxSize,
		now:     time.Now,
		logger:  logger.With("system", "assets"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Store(ctx context.Context, data []byte, nameHint string) (string, error) {
	ext := extension(nameHint)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stamp := s.now().UnixMilli()

	for n := range maxNameAttempts {
		ref := fmt.Sprintf("%d%s", stamp, ext)
		if n > 0 {
			ref = fmt.Sprintf("%d-%d%s", stamp, n, ext)
		}

		err := s.blobs.Create(ctx, ref, bytes.NewReader(data), contentType)
		if err == nil {
			s.logger.Debug("asset stored", "ref", ref, "size", len(data))
			return ref, nil
		}
		if !errors.Is(err, storage.ErrExists) {
			return "", fmt.Errorf("%w: %w", ErrStorageIO, err)
		}
	}

	return "", fmt.Errorf("%w: no free reference for %d after %d attempts", ErrStorageIO, stamp, maxNameAttempts)
}

func (s *store) Remove(ctx context.Context, ref string) {
	if ref == "" {
		return
	}

	if err := s.blobs.Delete(ctx, ref); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return
		}
		s.logger.Warn("asset removal failed", "ref", ref, "error", err)
		return
	}

	s.logger.Debug("asset removed", "ref", ref)
}

func (s *store) Exists(ctx context.Context, ref string) (bool, error) {
	ok, err := s.blobs.Exists(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return ok, nil
}

func (s *store) Open(ctx context.Context, ref string) (*storage.Blob, error) {
	blob, err := s.blobs.Download(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) || errors.Is(err, storage.ErrEmptyKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return blob, nil
}

func (s *store) List(ctx context.Context) ([]storage.Object, error) {
	objs, err := s.blobs.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return objs, nil
}

// extension returns the lower-cased extension of name restricted to [a-z0-9],
// or "" when nothing usable remains.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}

	var b strings.Builder
	b.WriteByte('.')
	for _, r := range ext[1:] {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 1 {
		return ""
	}
	return b.String()
}
