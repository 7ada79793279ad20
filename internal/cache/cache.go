// Package cache memoizes upstream responses and derived analytics behind an
// explicit, injected Cache. Analytics functions never see it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/metrics"
)

// ErrMiss is returned by Get when a key is absent or expired
var ErrMiss = errors.New("cache: miss")

// Cache stores opaque values with a per-entry TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and returns how
	// many were removed. An empty prefix clears the cache.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const keySeparator = ":"

// Key joins parts into a deterministic cache key. Empty parts are kept so
// ("a", "", "b") and ("a", "b") never collide.
func Key(parts ...string) string {
	return strings.Join(parts, keySeparator)
}

// New builds the configured backend wrapped with hit/miss metrics
func New(cfg config.CacheConfig, m *metrics.Manager) (Cache, error) {
	var (
		c   Cache
		err error
	)

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		c = NewMemory(cfg.CleanupInterval)
	case BackendRedis:
		c, err = NewRedis(RedisOptions{
			URL:       cfg.RedisURL,
			KeyPrefix: cfg.KeyPrefix,
			Compress:  cfg.Compress,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: memory, redis)", cfg.Backend)
	}

	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendMemory
	}
	return Instrument(c, backend, m), nil
}
