// Package pubsub wraps the in-process message transport the bus runs on.
package pubsub

import (
	"context"
)

// TopicInboundEvents is the shared queue all producer adapters publish to and
// the bus worker pool drains from.
const TopicInboundEvents = "chat.events.inbound"

// Message is the structure passed between components on the transport. It is
// intentionally a thin wrapper around raw payload bytes; event framing lives
// in the message package.
type Message struct {
	// Topic identifies the queue the message belongs to.
	Topic string
	// Payload contains the encoded event.
	Payload []byte
	// Metadata carries arbitrary key-value context (event kind, timestamps).
	Metadata map[string]string
}

// Handler processes a single received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher is the contract producer adapters use to enqueue events.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber is the contract for draining a topic.
type Subscriber interface {
	// Subscribe starts a background loop feeding each message to handler.
	// It returns once the subscription is active.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	// Stream returns the raw message channel for a topic. Multiple goroutines
	// reading the same channel act as competing consumers, which is how the
	// bus worker pool shares one queue.
	Stream(ctx context.Context, topic string) (<-chan Message, error)
	Close() error
}
