package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/queue"
)

// Invalidation origins reported to metrics
const (
	OriginLocal  = "local"
	OriginRemote = "remote"
)

// InvalidationMessage is broadcast on the invalidation subject
type InvalidationMessage struct {
	Prefix   string    `json:"prefix"`
	Origin   string    `json:"origin"`
	IssuedAt time.Time `json:"issued_at"`
}

// Invalidator deletes cache prefixes locally and tells other instances to do
// the same. Without a queue it only acts locally.
type Invalidator struct {
	cache      Cache
	queue      queue.Queue
	subject    string
	instanceID string
	metrics    *metrics.Manager
	logger     *logging.Logger
}

// NewInvalidator creates an invalidator. q may be nil.
func NewInvalidator(c Cache, q queue.Queue, subject string, m *metrics.Manager) *Invalidator {
	return &Invalidator{
		cache:      c,
		queue:      q,
		subject:    subject,
		instanceID: uuid.NewString(),
		metrics:    m,
		logger:     logging.Global().Component("cache.invalidator"),
	}
}

// InstanceID identifies this process in broadcast messages
func (i *Invalidator) InstanceID() string {
	return i.instanceID
}

// Broadcasting reports whether invalidations reach other instances
func (i *Invalidator) Broadcasting() bool {
	return i.queue != nil
}

// Start subscribes to invalidations from other instances
func (i *Invalidator) Start() error {
	if i.queue == nil {
		return nil
	}
	if err := i.queue.Subscribe(i.subject, i.handle); err != nil {
		return fmt.Errorf("subscribe to invalidations: %w", err)
	}
	i.logger.Info("Listening for cache invalidations", "subject", i.subject, "instance", i.instanceID)
	return nil
}

// Invalidate removes prefix locally and broadcasts it. A broadcast failure is
// returned along with the local result.
func (i *Invalidator) Invalidate(ctx context.Context, prefix string) (removed int, broadcast bool, err error) {
	removed, err = i.cache.DeletePrefix(ctx, prefix)
	if err != nil {
		return 0, false, fmt.Errorf("delete prefix %q: %w", prefix, err)
	}
	i.metrics.RecordInvalidation(OriginLocal)
	i.logger.Info("Cache invalidated", "prefix", prefix, "removed", removed)

	if i.queue == nil {
		return removed, false, nil
	}

	data, err := json.Marshal(InvalidationMessage{Prefix: prefix, Origin: i.instanceID, IssuedAt: time.Now().UTC()})
	if err != nil {
		return removed, false, fmt.Errorf("encode invalidation: %w", err)
	}
	if err := i.queue.Publish(ctx, i.subject, data); err != nil {
		return removed, false, fmt.Errorf("broadcast invalidation: %w", err)
	}
	return removed, true, nil
}

func (i *Invalidator) handle(data []byte) error {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode invalidation: %w", err)
	}
	if msg.Origin == i.instanceID {
		return nil
	}

	removed, err := i.cache.DeletePrefix(context.Background(), msg.Prefix)
	if err != nil {
		return fmt.Errorf("delete prefix %q: %w", msg.Prefix, err)
	}
	i.metrics.RecordInvalidation(OriginRemote)
	i.logger.Debug("Remote cache invalidation applied", "prefix", msg.Prefix, "origin", msg.Origin, "removed", removed)
	return nil
}

// Close stops listening. The queue itself is owned by the caller.
func (i *Invalidator) Close() error {
	if i.queue == nil {
		return nil
	}
	return i.queue.Unsubscribe(i.subject)
}
