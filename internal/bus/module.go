// Package bus dispatches inbound chat events through the priority-ordered
// module chain on a pool of workers and hands the results to the hub.
package bus

import (
	"context"
	"errors"

	"github.com/deforce/multichat/internal/message"
)

// ErrDrop is the sentinel a module returns to suppress an event. The chain
// short-circuits immediately; no later module sees the event and nothing
// reaches the hub.
var ErrDrop = errors.New("bus: event dropped")

// Module is a single processing stage. A module may mutate the event in
// place, return a replacement, or drop it entirely by returning ErrDrop.
type Module interface {
	// Name returns a unique identifier for the module.
	Name() string

	// Process transforms one event. Returning (nil, ErrDrop) suppresses the
	// event; any other error aborts processing for this event only.
	Process(ctx context.Context, ev message.Event) (message.Event, error)
}

// Sink receives every event that survives the chain. The hub implements it.
type Sink interface {
	Deliver(ctx context.Context, ev message.Event)
}
