// Package connectors holds the producer adapters that pull chat activity
// from external platforms and enqueue normalized events. Adapters own no
// chain logic; they only push well-formed events onto the shared queue.
package connectors

import (
	"context"

	"github.com/deforce/multichat/internal/message"
)

// Queue is the shared dispatch handle every adapter writes to.
type Queue interface {
	Dispatch(ctx context.Context, ev message.Event) error
}

// Connector is one producer adapter.
type Connector interface {
	// Name returns a unique identifier for the connector.
	Name() string

	// Priority orders connector startup; smaller starts first.
	Priority() int

	// Run connects to the platform and blocks, enqueueing events until the
	// context is canceled or the connection fails irrecoverably.
	Run(ctx context.Context) error
}
