// Package hub owns the client registries, the replay history and the fan-out
// of processed events to every connected viewer.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/deforce/multichat/internal/history"
	"github.com/deforce/multichat/internal/message"
	"github.com/deforce/multichat/internal/telemetry"
	"github.com/deforce/multichat/internal/themes"
)

// ChannelType identifies one of the two real-time audiences.
type ChannelType string

const (
	// ChannelGUI is the native UI channel.
	ChannelGUI ChannelType = themes.ChannelGUI
	// ChannelBrowser is the websocket-connected browser channel.
	ChannelBrowser ChannelType = themes.ChannelBrowser
)

// ThemeProvider supplies the current display settings per channel.
type ThemeProvider interface {
	Settings(channel string) themes.StyleSettings
}

// Config tunes hub timing.
type Config struct {
	// SendTimeout bounds a single client write.
	SendTimeout time.Duration
	// SettleDelay is how long after connect history replay is scheduled,
	// giving the client time to finish its subscribe sequence.
	SettleDelay time.Duration
}

const (
	defaultSendTimeout = 5 * time.Second
	defaultSettleDelay = 300 * time.Millisecond
)

// Hub is the broadcast hub. It owns the history store and the per-channel
// client registries directly; collaborators hold a reference instead of
// publishing on a shared named bus.
type Hub struct {
	store    *history.Store
	themes   ThemeProvider
	commands *CommandProcessor

	sendTimeout time.Duration
	settleDelay time.Duration

	mu      sync.RWMutex
	clients map[ChannelType]map[*Client]struct{}
}

// New creates a hub around the given history store and theme provider.
func New(store *history.Store, provider ThemeProvider, cfg Config) *Hub {
	telemetry.Init()
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	return &Hub{
		store:       store,
		themes:      provider,
		commands:    newCommandProcessor(store),
		sendTimeout: cfg.SendTimeout,
		settleDelay: cfg.SettleDelay,
		clients: map[ChannelType]map[*Client]struct{}{
			ChannelGUI:     {},
			ChannelBrowser: {},
		},
	}
}

// AddClient registers a new connection on a channel, starts its write pump
// and schedules the one-time history replay. The caller keeps reading from
// the connection and calls RemoveClient when the read side ends.
func (h *Hub) AddClient(channel ChannelType, addr string, transport Transport) *Client {
	client := newClient(channel, addr, transport)

	h.mu.Lock()
	h.clients[channel][client] = struct{}{}
	total := len(h.clients[channel])
	h.mu.Unlock()

	client.setState(StateOpen)
	go client.writePump(h.sendTimeout)

	telemetry.ClientsConnected.WithLabelValues(string(channel)).Set(float64(total))
	slog.Info("Client connected", "client", client.id, "channel", channel, "addr", addr, "total", total)

	if h.themes.Settings(string(channel)).ShowHistory {
		time.AfterFunc(h.settleDelay, func() {
			client.replayOnce.Do(func() { h.replayHistory(client) })
		})
	}
	return client
}

// RemoveClient drops a client from its channel registry and closes it. The
// registry entry goes first so no broadcast can pick the client up while its
// transport is being discarded.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	_, registered := h.clients[client.channel][client]
	delete(h.clients[client.channel], client)
	total := len(h.clients[client.channel])
	h.mu.Unlock()

	client.close()
	if registered {
		telemetry.ClientsConnected.WithLabelValues(string(client.channel)).Set(float64(total))
		slog.Info("Client disconnected", "client", client.id, "channel", client.channel, "total", total)
	}
}

// Clients returns the currently registered clients of one channel.
func (h *Hub) Clients(channel ChannelType) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.clients[channel]))
	for client := range h.clients[channel] {
		out = append(out, client)
	}
	return out
}

// Deliver implements the bus sink. Text and system events are retained in
// history before fan-out; command events are applied to history first so a
// viewer reconnecting right after the broadcast sees the mutated state.
func (h *Hub) Deliver(ctx context.Context, ev message.Event) {
	switch e := ev.(type) {
	case *message.TextEvent:
		if e.Hidden {
			return
		}
		if !e.OnlyUI {
			h.store.Append(e)
			telemetry.HistoryLength.Set(float64(h.store.Len()))
		}
	case *message.SystemEvent:
		if !e.OnlyUI {
			h.store.Append(e)
			telemetry.HistoryLength.Set(float64(h.store.Len()))
		}
	case *message.CommandEvent:
		h.commands.Apply(e.Command, e.IDs, e.Users)
	case *message.RemoveByIDs:
		h.commands.Apply(message.CmdRemoveByIDs, e.IDs, nil)
	case *message.RemoveByUsers:
		h.commands.Apply(message.CmdRemoveByUsers, nil, e.Users)
	}
	h.broadcast(ev)
}

// ProcessCommand is the control-plane entry for moderation commands (REST,
// native UI). It mutates history through the command processor, then
// broadcasts the matching control event so connected viewers update their
// local view without a full replay.
func (h *Hub) ProcessCommand(name string, ids, users []string) {
	if !h.commands.Apply(name, ids, users) {
		return
	}

	var notice message.Event
	switch name {
	case message.CmdRemoveByIDs:
		notice = message.NewRemoveByIDs(ids...)
	case message.CmdRemoveByUsers:
		notice = message.NewRemoveByUsers(users...)
	case message.CmdReplaceByIDs:
		notice = message.NewReplaceByIDs(ids...)
	case message.CmdReplaceByUsers:
		notice = message.NewReplaceByUsers(users...)
	default:
		ev := message.NewCommandEvent(name)
		ev.IDs = ids
		ev.Users = users
		notice = ev
	}
	h.broadcast(notice)
}

// History returns a snapshot of the replay buffer, oldest first.
func (h *Hub) History() []message.Event {
	return h.store.Snapshot()
}

// PreparedHistory renders the replay buffer the way the given channel would
// receive it. Used by the REST surface.
func (h *Hub) PreparedHistory(channel ChannelType) []message.Envelope {
	settings := h.themes.Settings(string(channel))
	snapshot := h.store.Snapshot()

	out := make([]message.Envelope, 0, len(snapshot))
	for _, ev := range snapshot {
		if sys, ok := ev.(*message.SystemEvent); ok && !settings.CategoryVisible(sys.Category) {
			continue
		}
		out = append(out, message.Prepare(ev, prepareOptions(settings)))
	}
	return out
}

// DeleteHistory removes the identified events and notifies connected viewers.
func (h *Hub) DeleteHistory(ids []string) {
	h.ProcessCommand(message.CmdRemoveByIDs, ids, nil)
}

// broadcast fans an event out to every eligible channel. only_ui events never
// reach the browser channel.
func (h *Hub) broadcast(ev message.Event) {
	if !onlyUI(ev) {
		h.sendToChannel(ev, ChannelBrowser)
	}
	h.sendToChannel(ev, ChannelGUI)
}

// sendToChannel prepares the event for one channel and enqueues it on every
// registered client. Per-client failures are isolated in the client's own
// pump; enqueueing never blocks.
func (h *Hub) sendToChannel(ev message.Event, channel ChannelType) {
	settings := h.themes.Settings(string(channel))
	if sys, ok := ev.(*message.SystemEvent); ok && !settings.CategoryVisible(sys.Category) {
		return
	}

	payload, err := json.Marshal(message.Prepare(ev, prepareOptions(settings)))
	if err != nil {
		slog.Error("Unable to serialize event for broadcast", "event_id", ev.EventID(), "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[channel] {
		client.enqueue(payload)
	}
}

// replayHistory pushes the history snapshot to a single newly connected
// client, filtering hidden system categories and, when a clear timer is
// configured, events older than the timer.
func (h *Hub) replayHistory(client *Client) {
	if !client.transition(StateOpen, StateReplaying) {
		return
	}
	defer client.transition(StateReplaying, StateOpen)

	settings := h.themes.Settings(string(client.channel))
	now := time.Now()

	sent := 0
	for _, ev := range h.store.Snapshot() {
		if sys, ok := ev.(*message.SystemEvent); ok && !settings.CategoryVisible(sys.Category) {
			continue
		}
		if settings.ClearTimer > 0 {
			if ts, ok := eventTimestamp(ev); ok && now.Sub(ts) > time.Duration(settings.ClearTimer)*time.Second {
				continue
			}
		}
		payload, err := json.Marshal(message.Prepare(ev, prepareOptions(settings)))
		if err != nil {
			slog.Error("Unable to serialize history event", "event_id", ev.EventID(), "error", err)
			continue
		}
		client.enqueue(payload)
		sent++
	}
	slog.Debug("History replayed", "client", client.id, "channel", client.channel, "events", sent)
}

func prepareOptions(s themes.StyleSettings) message.PrepareOptions {
	return message.PrepareOptions{
		RemoveText:     s.RemoveText,
		ReplaceMessage: s.ReplaceMessage,
		ReplaceText:    s.ReplaceText,
	}
}

func onlyUI(ev message.Event) bool {
	switch e := ev.(type) {
	case *message.TextEvent:
		return e.OnlyUI
	case *message.SystemEvent:
		return e.OnlyUI
	default:
		return false
	}
}

func eventTimestamp(ev message.Event) (time.Time, bool) {
	switch e := ev.(type) {
	case *message.TextEvent:
		return e.Timestamp, true
	case *message.SystemEvent:
		return e.Timestamp, true
	default:
		return time.Time{}, false
	}
}
