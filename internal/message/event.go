// Package message defines the closed set of event variants that flow through
// the bus, together with their transport codec and wire preparation.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags an event variant for transport and exhaustive matching.
type Kind string

const (
	KindText          Kind = "text"
	KindCommand       Kind = "command"
	KindSystem        Kind = "system"
	KindRemoveByIDs   Kind = "remove_by_ids"
	KindRemoveByUsers Kind = "remove_by_users"
)

// Tombstone is the sentinel stored in place of redacted text. It is rewritten
// to the channel's configured display string before transmission.
const Tombstone = "%%REMOVED%%"

// EmoteFormat is the placeholder format used for emote ids in outgoing text.
const EmoteFormat = ":emote;%s:"

// System event categories. Per-channel settings decide which of these are
// visible to connected clients.
const (
	CategorySystem = "system"
	CategoryChat   = "chat"
	CategoryModule = "module"
)

// SystemCategories returns every known system event category.
func SystemCategories() []string {
	return []string{CategorySystem, CategoryChat, CategoryModule}
}

// Command names understood by the command processor.
const (
	CmdReload         = "reload"
	CmdRemoveByIDs    = "remove_by_ids"
	CmdRemoveByUsers  = "remove_by_users"
	CmdReplaceByIDs   = "replace_by_ids"
	CmdReplaceByUsers = "replace_by_users"
)

// Event is the closed union of everything the bus can carry. Consumers switch
// on the concrete type; the Kind tag exists for transport framing.
type Event interface {
	EventID() string
	EventKind() Kind
}

// Emote is a chat emote reference attached to a text event.
type Emote struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Badge is a user badge attached to a text event.
type Badge struct {
	ID  string `json:"badge"`
	URL string `json:"url"`
}

// Platform identifies the chat source an event originated from.
type Platform struct {
	ID   string `json:"id"`
	Icon string `json:"icon"`
}

// TextEvent is a normal chat line. Modules may mutate it in place while it
// moves through the chain; the history store only ever holds clones.
type TextEvent struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Emotes    []Emote   `json:"emotes,omitempty"`
	Badges    []Badge   `json:"badges,omitempty"`
	Platform  Platform  `json:"platform"`

	// OnlyUI events are delivered to the native UI channel only and are
	// never retained in history.
	OnlyUI bool `json:"only_ui,omitempty"`
	// Hidden events finish the chain but are never handed to the hub.
	Hidden bool `json:"hidden,omitempty"`
}

// NewTextEvent creates a text event with a fresh id and timestamp.
func NewTextEvent(platform Platform, user, text string) *TextEvent {
	return &TextEvent{
		ID:        uuid.NewString(),
		User:      user,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Platform:  platform,
	}
}

func (e *TextEvent) EventID() string { return e.ID }
func (e *TextEvent) EventKind() Kind { return KindText }

// Clone returns a deep copy so stored history entries never alias live events.
func (e *TextEvent) Clone() *TextEvent {
	c := *e
	c.Emotes = append([]Emote(nil), e.Emotes...)
	c.Badges = append([]Badge(nil), e.Badges...)
	return &c
}

// SystemEvent is an informational notice produced by the process itself
// (connection status, module notices and the like).
type SystemEvent struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	OnlyUI    bool      `json:"only_ui,omitempty"`
}

// NewSystemEvent creates a system event with a fresh id and timestamp.
func NewSystemEvent(category, text string) *SystemEvent {
	return &SystemEvent{
		ID:        uuid.NewString(),
		Category:  category,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

func (e *SystemEvent) EventID() string { return e.ID }
func (e *SystemEvent) EventKind() Kind { return KindSystem }

// Clone returns a copy of the event.
func (e *SystemEvent) Clone() *SystemEvent {
	c := *e
	return &c
}

// CommandEvent instructs connected clients (and the command processor) to do
// something: reload, replace messages, etc.
type CommandEvent struct {
	ID      string   `json:"id"`
	Command string   `json:"command"`
	IDs     []string `json:"ids,omitempty"`
	Users   []string `json:"users,omitempty"`
}

// NewCommandEvent creates a command event with a fresh id.
func NewCommandEvent(command string) *CommandEvent {
	return &CommandEvent{ID: uuid.NewString(), Command: command}
}

// NewReplaceByIDs creates the command that redacts the given message ids.
func NewReplaceByIDs(ids ...string) *CommandEvent {
	return &CommandEvent{ID: uuid.NewString(), Command: CmdReplaceByIDs, IDs: ids}
}

// NewReplaceByUsers creates the command that redacts every message by the
// given users.
func NewReplaceByUsers(users ...string) *CommandEvent {
	return &CommandEvent{ID: uuid.NewString(), Command: CmdReplaceByUsers, Users: users}
}

func (e *CommandEvent) EventID() string { return e.ID }
func (e *CommandEvent) EventKind() Kind { return KindCommand }

// RemoveByIDs is the control event asking viewers to drop the identified
// messages. Control events are never stored in history.
type RemoveByIDs struct {
	ID  string   `json:"id"`
	IDs []string `json:"ids"`
}

// NewRemoveByIDs creates a removal control event for the given message ids.
func NewRemoveByIDs(ids ...string) *RemoveByIDs {
	return &RemoveByIDs{ID: uuid.NewString(), IDs: ids}
}

func (e *RemoveByIDs) EventID() string { return e.ID }
func (e *RemoveByIDs) EventKind() Kind { return KindRemoveByIDs }

// RemoveByUsers is the control event asking viewers to drop every message by
// the named users.
type RemoveByUsers struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

// NewRemoveByUsers creates a removal control event for the given users.
func NewRemoveByUsers(users ...string) *RemoveByUsers {
	return &RemoveByUsers{ID: uuid.NewString(), Users: users}
}

func (e *RemoveByUsers) EventID() string { return e.ID }
func (e *RemoveByUsers) EventKind() Kind { return KindRemoveByUsers }
