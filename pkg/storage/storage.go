// Package storage provides the key-value storage abstraction the assistant
// persists its small state through (usage counters, saved settings). The
// embedding host decides what actually backs it: a directory of files, a
// redis instance, or plain memory in tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound indicates no value is stored under the requested key.
var ErrKeyNotFound = errors.New("key not found")

// IsKeyNotFound checks if an error indicates a missing key.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Storage is an async key-value store keyed by string.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// NewFromURL selects a backend from a storage URL scheme:
// "file:///path", "redis://host:port/db" or "memory://".
func NewFromURL(storageURL string) (Storage, error) {
	scheme, _, _ := strings.Cut(storageURL, "://")

	switch scheme {
	case "file":
		return NewFileStorage(strings.TrimPrefix(storageURL, "file://")), nil
	case "redis", "rediss":
		return NewRedisStorage(storageURL)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %q", scheme)
	}
}
