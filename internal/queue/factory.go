package queue

import (
	"fmt"
	"strings"

	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/utils"
)

// NewQueue creates a Queue for the configured transport. Type "none" (or an
// empty type) returns a nil Queue and no error: the instance runs without
// cross-instance invalidation.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	switch queueType {
	case "", utils.QueueTypeNone:
		return nil, nil

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	case utils.QueueTypeNATS:
		return newNATSQueue(cfg.URL)

	case utils.QueueTypeRedis:
		return newRedisQueue(cfg.URL)

	case utils.QueueTypeKafka:
		return newKafkaQueue(KafkaConfig{Brokers: cfg.KafkaBrokers})

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: none, memory, nats, redis, kafka)", queueType)
	}
}

// NewMemoryQueue returns an in-process queue
func NewMemoryQueue() *MemoryQueue {
	return newMemoryQueue()
}
