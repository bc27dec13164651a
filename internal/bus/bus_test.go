package bus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deforce/multichat/internal/bus"
	"github.com/deforce/multichat/internal/message"
	"github.com/deforce/multichat/internal/pubsub"
)

// recordingSink collects delivered events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []message.Event
}

func (s *recordingSink) Deliver(ctx context.Context, ev message.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) snapshot() []message.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.Event(nil), s.events...)
}

func newRunningBus(t *testing.T, chain *bus.Chain, sink bus.Sink, workers int) *bus.Bus {
	t.Helper()
	bridge := pubsub.NewWatermillBridge(16)
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := bus.New(bridge, bridge, chain, sink, workers)
	require.NoError(t, b.Run(ctx))
	return b
}

func TestBusDeliversProcessedEvents(t *testing.T) {
	sink := &recordingSink{}
	b := newRunningBus(t, bus.NewChain(), sink, 2)

	ev := message.NewTextEvent(message.Platform{ID: "test"}, "alice", "hello")
	require.NoError(t, b.Dispatch(context.Background(), ev))

	assert.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	delivered := sink.snapshot()[0].(*message.TextEvent)
	assert.Equal(t, ev.ID, delivered.ID)
	assert.Equal(t, "hello", delivered.Text)
}

func TestBusDropsEventsRejectedByChain(t *testing.T) {
	trace, mu := newTrace()
	chain := bus.NewChain()
	chain.Register(&traceModule{name: "dropper", trace: trace, mu: mu, drop: true}, 1)

	sink := &recordingSink{}
	b := newRunningBus(t, chain, sink, 1)

	require.NoError(t, b.Dispatch(context.Background(), message.NewTextEvent(message.Platform{ID: "test"}, "mallory", "spam")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*trace) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, sink.snapshot())
}

func TestBusSurvivesModuleFailures(t *testing.T) {
	trace, mu := newTrace()
	chain := bus.NewChain()
	chain.Register(&traceModule{name: "flaky", trace: trace, mu: mu, fail: errors.New("boom")}, 1)

	sink := &recordingSink{}
	b := newRunningBus(t, chain, sink, 1)

	ctx := context.Background()
	require.NoError(t, b.Dispatch(ctx, message.NewTextEvent(message.Platform{ID: "test"}, "alice", "one")))
	require.NoError(t, b.Dispatch(ctx, message.NewTextEvent(message.Platform{ID: "test"}, "alice", "two")))

	// The single worker keeps draining the queue past the first failure.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*trace) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, sink.snapshot())
}
