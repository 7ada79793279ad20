package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gridstats/gridstats/internal/logging"
)

// Remember returns the value cached at key or computes it with fn and stores
// the JSON encoding for ttl. Errors from fn are returned and never cached.
// Cache failures are logged and fall through to fn, so a broken backend only
// costs latency. A nil Cache always calls fn.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}

	logger := logging.FromContext(ctx)

	data, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		logger.Warn("Discarding undecodable cache entry", "key", key, "error", err)
	case !errors.Is(err, ErrMiss):
		logger.Warn("Cache get failed", "key", key, "error", err)
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Cache encode failed", "key", key, "error", err)
		return v, nil
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		logger.Warn("Cache set failed", "key", key, "error", err)
	}
	return v, nil
}
