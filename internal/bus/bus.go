package bus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/deforce/multichat/internal/message"
	"github.com/deforce/multichat/internal/pubsub"
	"github.com/deforce/multichat/internal/telemetry"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 2

const metaKeyKind = "event_kind"

// Bus owns the worker pool that drains the inbound queue. Dispatch is
// non-blocking for producers; a fixed set of workers pulls events off the
// shared queue, runs each through the chain and hands survivors to the sink.
//
// There is no ordering guarantee between events picked up by different
// workers. Within one worker the chain runs strictly sequentially.
type Bus struct {
	publisher  pubsub.Publisher
	subscriber pubsub.Subscriber
	chain      *Chain
	sink       Sink
	workers    int
}

// New creates a bus. A non-positive worker count falls back to DefaultWorkers.
func New(pub pubsub.Publisher, sub pubsub.Subscriber, chain *Chain, sink Sink, workers int) *Bus {
	telemetry.Init()
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Bus{
		publisher:  pub,
		subscriber: sub,
		chain:      chain,
		sink:       sink,
		workers:    workers,
	}
}

// Dispatch enqueues an event for processing and returns immediately.
func (b *Bus) Dispatch(ctx context.Context, ev message.Event) error {
	payload, kind, err := message.Marshal(ev)
	if err != nil {
		return err
	}
	msg := pubsub.Message{
		Topic:    pubsub.TopicInboundEvents,
		Payload:  payload,
		Metadata: map[string]string{metaKeyKind: string(kind)},
	}
	if err := b.publisher.Publish(ctx, msg); err != nil {
		return err
	}
	telemetry.EventsDispatched.Inc()
	return nil
}

// Run starts the worker pool and returns once every worker is draining the
// queue. Workers live for the process lifetime; they stop only when the
// context is canceled or the transport closes.
func (b *Bus) Run(ctx context.Context) error {
	stream, err := b.subscriber.Stream(ctx, pubsub.TopicInboundEvents)
	if err != nil {
		return err
	}
	for i := 0; i < b.workers; i++ {
		go b.worker(ctx, i, stream)
	}
	slog.Info("Message bus started", "workers", b.workers, "modules", b.chain.Names())
	return nil
}

func (b *Bus) worker(ctx context.Context, id int, stream <-chan pubsub.Message) {
	for msg := range stream {
		b.processOne(ctx, msg)
	}
	slog.Debug("Bus worker stopped", "worker", id)
}

// processOne isolates a single event: a module failure or panic drops that
// event and is logged, but the worker keeps draining the queue.
func (b *Bus) processOne(ctx context.Context, msg pubsub.Message) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.ChainFailures.Inc()
			telemetry.EventsDropped.Inc()
			slog.Error("Module chain panicked", "panic", r)
		}
	}()

	ev, err := message.Unmarshal(message.Kind(msg.Metadata[metaKeyKind]), msg.Payload)
	if err != nil {
		telemetry.EventsDropped.Inc()
		slog.Error("Discarding undecodable event", "error", err)
		return
	}

	out, err := b.chain.ProcessAll(ctx, ev)
	if err != nil {
		telemetry.EventsDropped.Inc()
		if errors.Is(err, ErrDrop) {
			slog.Debug("Event dropped by module chain", "event_id", ev.EventID())
			return
		}
		telemetry.ChainFailures.Inc()
		slog.Error("Module chain failed", "event_id", ev.EventID(), "kind", ev.EventKind(), "error", err)
		return
	}

	telemetry.EventsProcessed.Inc()
	b.sink.Deliver(ctx, out)
}
