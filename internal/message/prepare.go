package message

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// PrepareOptions carries the per-channel display settings that influence how
// an event is rendered on the wire.
type PrepareOptions struct {
	// RemoveText is the display string substituted for the tombstone marker.
	RemoveText string
	// ReplaceMessage controls whether remove commands are delivered as-is.
	// When false, a remove command is downgraded to the matching replace
	// command carrying ReplaceText, so the viewer redacts instead of deleting.
	ReplaceMessage bool
	// ReplaceText is the display string used for downgraded remove commands.
	ReplaceText string
}

// Envelope is the JSON frame sent to every connected client.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type textPayload struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Emotes    []Emote   `json:"emotes"`
	Badges    []Badge   `json:"badges"`
	Platform  Platform  `json:"platform"`
}

type commandPayload struct {
	ID      string   `json:"id"`
	Command string   `json:"command"`
	Text    string   `json:"text,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Users   []string `json:"users,omitempty"`
}

type systemPayload struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Prepare renders an event into its wire envelope. Text is HTML-escaped, the
// tombstone marker is rewritten to the configured removal string, and emote
// ids are expanded into their inline placeholder format.
func Prepare(ev Event, opts PrepareOptions) Envelope {
	switch e := ev.(type) {
	case *TextEvent:
		text := e.Text
		if text == Tombstone {
			text = opts.RemoveText
		}
		return Envelope{
			Type: "message",
			Payload: textPayload{
				ID:        e.ID,
				User:      e.User,
				Text:      html.EscapeString(text),
				Timestamp: e.Timestamp,
				Emotes:    prepareEmotes(e.Emotes),
				Badges:    prepareBadges(e.Badges),
				Platform:  e.Platform,
			},
		}
	case *SystemEvent:
		text := e.Text
		if text == Tombstone {
			text = opts.RemoveText
		}
		return Envelope{
			Type: e.Category,
			Payload: systemPayload{
				ID:        e.ID,
				Category:  e.Category,
				Text:      html.EscapeString(text),
				Timestamp: e.Timestamp,
			},
		}
	case *CommandEvent:
		return prepareCommand(e.ID, e.Command, "", e.IDs, e.Users, opts)
	case *RemoveByIDs:
		return prepareCommand(e.ID, CmdRemoveByIDs, "", e.IDs, nil, opts)
	case *RemoveByUsers:
		return prepareCommand(e.ID, CmdRemoveByUsers, "", nil, e.Users, opts)
	default:
		// The union is closed; reaching this means a new variant was added
		// without updating Prepare.
		panic(fmt.Sprintf("message: unhandled event type %T", ev))
	}
}

func prepareCommand(id, command, text string, ids, users []string, opts PrepareOptions) Envelope {
	if strings.HasPrefix(command, "remove") && !opts.ReplaceMessage {
		command = strings.Replace(command, "remove", "replace", 1)
		text = html.EscapeString(opts.ReplaceText)
	}
	return Envelope{
		Type: "command",
		Payload: commandPayload{
			ID:      id,
			Command: command,
			Text:    text,
			IDs:     ids,
			Users:   users,
		},
	}
}

func prepareEmotes(emotes []Emote) []Emote {
	out := make([]Emote, 0, len(emotes))
	for _, e := range emotes {
		out = append(out, Emote{ID: fmt.Sprintf(EmoteFormat, e.ID), URL: e.URL})
	}
	return out
}

func prepareBadges(badges []Badge) []Badge {
	if badges == nil {
		return []Badge{}
	}
	return badges
}
