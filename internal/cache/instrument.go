package cache

import (
	"context"
	"time"

	"github.com/gridstats/gridstats/internal/metrics"
)

type instrumented struct {
	Cache
	backend string
	metrics *metrics.Manager
}

// Instrument records a hit or miss for every Get on c
func Instrument(c Cache, backend string, m *metrics.Manager) Cache {
	if m == nil {
		return c
	}
	return &instrumented{Cache: c, backend: backend, metrics: m}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.Cache.Get(ctx, key)
	c.metrics.RecordCacheLookup(c.backend, err == nil)
	return value, err
}

func (c *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.Cache.Set(ctx, key, value, ttl)
}
