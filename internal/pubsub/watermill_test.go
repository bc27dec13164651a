package pubsub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deforce/multichat/internal/pubsub"
)

func TestStreamDeliversPublishedMessages(t *testing.T) {
	bridge := pubsub.NewWatermillBridge(4)
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stream, err := bridge.Stream(ctx, pubsub.TopicInboundEvents)
	require.NoError(t, err)

	sent := pubsub.Message{
		Topic:    pubsub.TopicInboundEvents,
		Payload:  []byte(`{"hello":"world"}`),
		Metadata: map[string]string{"event_kind": "text"},
	}
	require.NoError(t, bridge.Publish(ctx, sent))

	select {
	case got := <-stream:
		assert.Equal(t, sent.Topic, got.Topic)
		assert.Equal(t, sent.Payload, got.Payload)
		assert.Equal(t, "text", got.Metadata["event_kind"])
	case <-time.After(time.Second):
		t.Fatal("no message received from stream")
	}
}

func TestStreamClosesWithTransport(t *testing.T) {
	bridge := pubsub.NewWatermillBridge(4)

	stream, err := bridge.Stream(context.Background(), pubsub.TopicInboundEvents)
	require.NoError(t, err)

	require.NoError(t, bridge.Close())

	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stream did not close")
	}
}
