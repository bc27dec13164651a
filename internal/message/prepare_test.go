package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deforce/multichat/internal/message"
)

func defaultOpts() message.PrepareOptions {
	return message.PrepareOptions{
		RemoveText:     "message removed",
		ReplaceMessage: false,
		ReplaceText:    "***",
	}
}

// decodeEnvelope round-trips the envelope through JSON, which is exactly what
// the hub does before a frame hits the wire.
func decodeEnvelope(t *testing.T, env message.Envelope) (string, map[string]any) {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded.Type, decoded.Payload
}

func TestPrepareEscapesText(t *testing.T) {
	ev := message.NewTextEvent(message.Platform{ID: "twitch"}, "mallory", `<script>alert("hi")</script>`)

	typ, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	require.Equal(t, "message", typ)
	assert.NotContains(t, payload["text"], "<script>")
	assert.Contains(t, payload["text"], "&lt;script&gt;")
}

func TestPrepareRewritesTombstone(t *testing.T) {
	ev := message.NewTextEvent(message.Platform{ID: "twitch"}, "alice", message.Tombstone)

	_, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	assert.Equal(t, "message removed", payload["text"])
}

func TestPrepareRewritesSystemTombstone(t *testing.T) {
	ev := message.NewSystemEvent(message.CategorySystem, "redact me")
	ev.Text = message.Tombstone

	_, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	assert.Equal(t, "message removed", payload["text"])
}

func TestPrepareFormatsEmotes(t *testing.T) {
	ev := message.NewTextEvent(message.Platform{ID: "twitch"}, "alice", "hi Kappa")
	ev.Emotes = []message.Emote{{ID: "Kappa", URL: "https://example.com/kappa.png"}}

	_, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	emotes, ok := payload["emotes"].([]any)
	require.True(t, ok)
	require.Len(t, emotes, 1)
	emote := emotes[0].(map[string]any)
	assert.Equal(t, ":emote;Kappa:", emote["id"])
	assert.Equal(t, "https://example.com/kappa.png", emote["url"])
}

func TestPrepareIncludesEmptyEmoteAndBadgeLists(t *testing.T) {
	ev := message.NewTextEvent(message.Platform{ID: "twitch"}, "alice", "plain")

	_, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	assert.Equal(t, []any{}, payload["emotes"])
	assert.Equal(t, []any{}, payload["badges"])
}

func TestPrepareDowngradesRemoveCommand(t *testing.T) {
	ev := message.NewRemoveByIDs("abc")

	typ, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	require.Equal(t, "command", typ)
	assert.Equal(t, message.CmdReplaceByIDs, payload["command"])
	assert.Equal(t, "***", payload["text"])
}

func TestPrepareKeepsRemoveCommandWhenConfigured(t *testing.T) {
	opts := defaultOpts()
	opts.ReplaceMessage = true
	ev := message.NewRemoveByUsers("mallory")

	typ, payload := decodeEnvelope(t, message.Prepare(ev, opts))

	require.Equal(t, "command", typ)
	assert.Equal(t, message.CmdRemoveByUsers, payload["command"])
	assert.NotContains(t, payload, "text")
}

func TestPrepareSystemEventUsesCategoryAsType(t *testing.T) {
	ev := message.NewSystemEvent(message.CategoryChat, "twitch connected")

	typ, payload := decodeEnvelope(t, message.Prepare(ev, defaultOpts()))

	assert.Equal(t, message.CategoryChat, typ)
	assert.Equal(t, "twitch connected", payload["text"])
}
