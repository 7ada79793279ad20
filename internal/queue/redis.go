package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/utils"
	"github.com/redis/go-redis/v9"
)

// RedisQueue broadcasts over Redis PUBLISH/SUBSCRIBE channels
type RedisQueue struct {
	client        *redis.Client
	subscriptions map[string]*redis.PubSub
	mu            sync.Mutex
	logger        *logging.Logger
}

// newRedisQueue connects to url, a redis:// URL or a bare host:port
func newRedisQueue(url string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), utils.RedisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisQueueWithClient(client), nil
}

func newRedisQueueWithClient(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		logger:        logging.Global().Component("queue.redis"),
	}
}

// Publish publishes a message to a Redis channel
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.client.Publish(ctx, subject, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", subject, err)
	}
	return nil
}

// Subscribe subscribes to a Redis channel and returns once the server has
// confirmed the subscription
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.RedisPingTimeout)
	defer cancel()

	pubsub := q.client.Subscribe(ctx, subject)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to Redis channel %s: %w", subject, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			if err := handler([]byte(msg.Payload)); err != nil {
				q.logger.Warn("Message handler failed", "subject", subject, "error", err)
			}
		}
	}()

	q.subscriptions[subject] = pubsub
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pubsub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	delete(q.subscriptions, subject)
	return pubsub.Close()
}

// Close closes every subscription and the Redis connection
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, pubsub := range q.subscriptions {
		_ = pubsub.Close()
		delete(q.subscriptions, subject)
	}
	return q.client.Close()
}
