// Package cache provides the key/value collaborator used to keep parsed
// source tables and external lookup responses between runs.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("cache: key not found")

// Store is a string-keyed blob store. Entries never expire on their own;
// callers version their keys to invalidate. Put is idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string
	RedisAddr string
	Prefix    string
}

// Open creates the store named by opts.Backend. An empty backend means memory.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("cache: redis backend requires an address")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		return NewRedis(client, opts.Prefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
	}
}
