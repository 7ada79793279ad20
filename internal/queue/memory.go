package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/utils"
)

type memorySubscription struct {
	ch     chan []byte
	cancel context.CancelFunc
	done   chan struct{}
}

// MemoryQueue delivers messages between components of one process
type MemoryQueue struct {
	subscriptions map[string]*memorySubscription
	closed        bool
	mu            sync.RWMutex
	logger        *logging.Logger
}

func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		subscriptions: make(map[string]*memorySubscription),
		logger:        logging.Global().Component("queue.memory"),
	}
}

// Publish hands a copy of data to the subject's subscriber. With no
// subscriber the message is dropped.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	sub, ok := q.subscriptions[subject]
	if !ok {
		return nil
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case sub.ch <- dataCopy:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("subscriber buffer full for subject: %s", subject)
	}
}

// Subscribe starts delivering subject's messages to handler
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &memorySubscription{
		ch:     make(chan []byte, utils.SubscriberBufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	q.subscriptions[subject] = sub

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-sub.ch:
				if err := handler(data); err != nil {
					q.logger.Warn("Message handler failed", "subject", subject, "error", err)
				}
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery and waits for the handler goroutine to exit
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	sub, exists := q.subscriptions[subject]
	if !exists {
		q.mu.Unlock()
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	delete(q.subscriptions, subject)
	q.mu.Unlock()

	sub.cancel()
	<-sub.done
	return nil
}

// Close cancels every subscription
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	subs := q.subscriptions
	q.subscriptions = make(map[string]*memorySubscription)
	q.closed = true
	q.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		<-sub.done
	}
	return nil
}
