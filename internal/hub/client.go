package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/deforce/multichat/internal/telemetry"
)

// State tracks a client through its lifecycle. Closed is terminal.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateReplaying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReplaying:
		return "replaying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transport is the write side of a client connection. The hub only ever
// writes; reads are handled by the connection's own pump.
type Transport interface {
	Write(ctx context.Context, payload []byte) error
	Close() error
}

// Client is one connected viewer. A client belongs to exactly one channel
// type for its lifetime.
type Client struct {
	id      string
	addr    string
	channel ChannelType

	transport Transport

	// send is the buffered outbound queue. The hub enqueues; writePump
	// drains. A full buffer drops the message rather than stalling fan-out.
	send chan []byte

	state      atomic.Int32
	replayOnce sync.Once
	done       chan struct{}
	closeOnce  sync.Once
}

func newClient(channel ChannelType, addr string, transport Transport) *Client {
	c := &Client{
		id:        uuid.NewString(),
		addr:      addr,
		channel:   channel,
		transport: transport,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// ID returns the client's unique identity.
func (c *Client) ID() string { return c.id }

// Addr returns the remote address the client connected from.
func (c *Client) Addr() string { return c.addr }

// Channel returns the channel type the client registered for.
func (c *Client) Channel() ChannelType { return c.channel }

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// transitions the client out of a specific state only; closed always wins.
func (c *Client) transition(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// enqueue hands a payload to the client's outbound queue without blocking.
// A lagging client loses the message, never the broadcast.
func (c *Client) enqueue(payload []byte) {
	if c.State() == StateClosed {
		return
	}
	select {
	case c.send <- payload:
	default:
		telemetry.SendFailures.Inc()
		slog.Warn("Client send buffer full, dropping message", "client", c.id, "channel", c.channel)
	}
}

// writePump drains the send queue onto the transport. Every write is bounded
// by sendTimeout so one stalled peer cannot delay the pump indefinitely. A
// failed write drops that one delivery; only connection close removes the
// client.
func (c *Client) writePump(sendTimeout time.Duration) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			err := c.transport.Write(ctx, payload)
			cancel()
			if err != nil {
				telemetry.SendFailures.Inc()
				slog.Error("Client write failed", "client", c.id, "channel", c.channel, "error", err)
			}
		}
	}
}

// close marks the client closed and releases its pump and transport. Safe to
// call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		close(c.done)
		if err := c.transport.Close(); err != nil {
			slog.Debug("Client transport close", "client", c.id, "error", err)
		}
	})
}
