// Package kv provides byte-oriented key-value stores that hold board snapshots.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/kanban/internal/validation"
)

var (
	// ErrNotFound is returned by Get when a key has never been written.
	ErrNotFound = errors.New("key not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store reads and writes opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Backends returns every supported backend.
func Backends() []Backend {
	return []Backend{BackendFile, BackendSQLite, BackendRedis, BackendMemory}
}

// Config selects and configures a backend.
type Config struct {
	Backend Backend

	// Path is the state directory for the file backend and the database file for sqlite.
	Path string

	// RedisURL is a redis:// URL for the redis backend.
	RedisURL string
}

// Open returns the Store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a path")
		}
		return NewSQLiteStore(cfg.Path)
	case BackendRedis:
		return NewRedisStoreFromURL(ctx, cfg.RedisURL)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, validation.FormatInvalidValueError(ErrUnknownBackend, cfg.Backend, Backends())
	}
}
