// Package store persists JSON documents addressed by (collection, key).
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrExists     = errors.New("document already exists")
	ErrInvalidKey = errors.New("invalid collection or key")
)

// Store is the credential store contract shared by every backend. Values
// are encoded as JSON documents.
type Store interface {
	// Create fails with ErrExists when the key is taken.
	Create(ctx context.Context, collection, key string, v any) error
	// Read decodes the document into out, or fails with ErrNotFound.
	Read(ctx context.Context, collection, key string, out any) error
	// Update replaces an existing document, or fails with ErrNotFound.
	Update(ctx context.Context, collection, key string, v any) error
	// Delete removes an existing document, or fails with ErrNotFound.
	Delete(ctx context.Context, collection, key string) error
	Exists(ctx context.Context, collection, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// ValidateKey rejects names that could escape a collection or collide with
// the backend's own separators.
func ValidateKey(collection, key string) error {
	for _, part := range []string{collection, key} {
		if part == "" || part == "." || part == ".." ||
			strings.ContainsAny(part, "/\\:\x00") || strings.Contains(part, "..") {
			return fmt.Errorf("%w: %q/%q", ErrInvalidKey, collection, key)
		}
	}
	return nil
}

func wrap(op, collection, key string, err error) error {
	return fmt.Errorf("store %s %s/%s: %w", op, collection, key, err)
}

type loggingStore struct {
	next   Store
	logger *zap.Logger
}

// WithLogging logs every operation with its duration at debug level and
// failures other than ErrNotFound at warn level.
func WithLogging(next Store, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingStore{next: next, logger: logger}
}

func (s *loggingStore) observe(op, collection string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("collection", collection),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("Store operation failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("Store operation", fields...)
}

func (s *loggingStore) Create(ctx context.Context, collection, key string, v any) error {
	start := time.Now()
	err := s.next.Create(ctx, collection, key, v)
	s.observe("create", collection, start, err)
	return err
}

func (s *loggingStore) Read(ctx context.Context, collection, key string, out any) error {
	start := time.Now()
	err := s.next.Read(ctx, collection, key, out)
	s.observe("read", collection, start, err)
	return err
}

func (s *loggingStore) Update(ctx context.Context, collection, key string, v any) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, key, v)
	s.observe("update", collection, start, err)
	return err
}

func (s *loggingStore) Delete(ctx context.Context, collection, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, key)
	s.observe("delete", collection, start, err)
	return err
}

func (s *loggingStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(ctx, collection, key)
	s.observe("exists", collection, start, err)
	return ok, err
}

func (s *loggingStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *loggingStore) Close() error {
	return s.next.Close()
}
