// Package queue broadcasts small messages between API instances. Every
// subscriber on a subject receives every message published after it
// subscribed; nothing is persisted or replayed.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing on a closed queue
var ErrClosed = errors.New("queue: closed")

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// Close closes the connection
	Close() error
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. Errors are reported but the
// message is not redelivered.
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}
