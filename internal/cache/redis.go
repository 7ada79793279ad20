package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridstats/gridstats/internal/compression"
	"github.com/gridstats/gridstats/internal/utils"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisOptions configures the Redis backend
type RedisOptions struct {
	URL       string // redis://host:port/db or bare host:port
	KeyPrefix string // namespaces every key, e.g. "gridstats"
	Compress  bool   // snappy-compress values
}

// Redis stores values in Redis. Each value is framed with its compression
// algorithm, so toggling Compress keeps old entries readable.
type Redis struct {
	client     *redis.Client
	prefix     string
	compressor compression.Compressor
}

// NewRedis connects and pings the server
func NewRedis(opts RedisOptions) (*Redis, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		ropts = &redis.Options{Addr: opts.URL}
	}
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(context.Background(), utils.RedisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis cache: %w", err)
	}
	return NewRedisWithClient(client, opts), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, opts RedisOptions) *Redis {
	var c compression.Compressor = &compression.NoneCompressor{}
	if opts.Compress {
		c = compression.NewSnappyCompressor()
	}

	prefix := opts.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, keySeparator) {
		prefix += keySeparator
	}
	return &Redis{client: client, prefix: prefix, compressor: c}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get returns the decoded value stored at key
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	frame, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := compression.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return value, nil
}

// Set stores value with ttl. A ttl of zero or less never expires.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	frame, err := compression.Encode(r.compressor, value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), frame, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// DeletePrefix walks matching keys with SCAN and deletes them in batches
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(r.key(prefix)) + "*"

	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

// escapeGlob escapes the characters SCAN MATCH treats as patterns
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
