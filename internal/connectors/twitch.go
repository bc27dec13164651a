package connectors

import (
	"context"
	"fmt"
	"log/slog"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/deforce/multichat/internal/message"
)

const twitchEmoteURL = "https://static-cdn.jtvnw.net/emoticons/v2/%s/default/dark/1.0"

var twitchPlatform = message.Platform{ID: "twitch", Icon: "/img/twitch.png"}

// TwitchConfig carries the IRC credentials for one channel.
type TwitchConfig struct {
	Channel  string
	Username string
	OAuth    string
}

// Twitch ingests a single Twitch channel's chat and enqueues each line as a
// text event.
type Twitch struct {
	queue Queue
	cfg   TwitchConfig
}

// NewTwitch creates the twitch connector.
func NewTwitch(queue Queue, cfg TwitchConfig) *Twitch {
	return &Twitch{queue: queue, cfg: cfg}
}

func (t *Twitch) Name() string  { return "twitch" }
func (t *Twitch) Priority() int { return 30 }

// Run connects to Twitch IRC and blocks until the context is canceled or the
// connection fails.
func (t *Twitch) Run(ctx context.Context) error {
	client := twitch.NewClient(t.cfg.Username, t.cfg.OAuth)

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		ev := message.NewTextEvent(twitchPlatform, msg.User.DisplayName, msg.Message)
		for _, e := range msg.Emotes {
			ev.Emotes = append(ev.Emotes, message.Emote{
				ID:  e.Name,
				URL: fmt.Sprintf(twitchEmoteURL, e.ID),
			})
		}
		// IRC tags only carry the badge name and version; the image URL
		// requires a separate Helix badge lookup, so it stays empty here.
		for badge := range msg.User.Badges {
			ev.Badges = append(ev.Badges, message.Badge{ID: badge})
		}
		if err := t.queue.Dispatch(ctx, ev); err != nil {
			slog.Error("Unable to enqueue twitch message", "user", ev.User, "error", err)
		}
	})

	client.OnConnect(func() {
		slog.Info("Connected to twitch chat", "channel", t.cfg.Channel)
		notice := message.NewSystemEvent(message.CategoryChat, fmt.Sprintf("Joined twitch channel %s", t.cfg.Channel))
		if err := t.queue.Dispatch(ctx, notice); err != nil {
			slog.Error("Unable to enqueue connect notice", "error", err)
		}
	})

	go func() {
		<-ctx.Done()
		if err := client.Disconnect(); err != nil {
			slog.Debug("Twitch disconnect", "error", err)
		}
	}()

	client.Join(t.cfg.Channel)
	if err := client.Connect(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("twitch connect: %w", err)
	}
	return nil
}
