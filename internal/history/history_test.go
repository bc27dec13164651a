package history_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deforce/multichat/internal/history"
	"github.com/deforce/multichat/internal/message"
)

func textEvent(user, text string) *message.TextEvent {
	return message.NewTextEvent(message.Platform{ID: "test"}, user, text)
}

func TestAppendEvictsOldestOnOverflow(t *testing.T) {
	store := history.NewStore(50)

	var ids []string
	for i := 0; i < 60; i++ {
		ev := textEvent("alice", fmt.Sprintf("msg-%d", i))
		ids = append(ids, ev.ID)
		store.Append(ev)
	}

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 50)
	// The survivors are the most recent 50, oldest first.
	for i, ev := range snapshot {
		assert.Equal(t, ids[i+10], ev.EventID())
	}
}

func TestAppendIgnoresControlEvents(t *testing.T) {
	store := history.NewStore(10)

	store.Append(message.NewRemoveByIDs("x"))
	store.Append(message.NewCommandEvent(message.CmdReload))

	assert.Zero(t, store.Len())
}

func TestSnapshotIsIsolatedFromMutation(t *testing.T) {
	store := history.NewStore(10)
	ev := textEvent("alice", "original")
	store.Append(ev)

	snapshot := store.Snapshot()
	store.ReplaceByIDs([]string{ev.ID})

	text := snapshot[0].(*message.TextEvent)
	assert.Equal(t, "original", text.Text)
}

func TestRemoveByIDs(t *testing.T) {
	store := history.NewStore(10)
	keep := textEvent("alice", "keep")
	drop := textEvent("bob", "drop")
	store.Append(keep)
	store.Append(drop)

	removed := store.RemoveByIDs([]string{drop.ID, "no-such-id"})

	assert.Equal(t, 1, removed)
	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, keep.ID, snapshot[0].EventID())
}

func TestRemoveByUsersRemovesEveryMatch(t *testing.T) {
	store := history.NewStore(10)
	store.Append(textEvent("mallory", "one"))
	store.Append(textEvent("alice", "two"))
	store.Append(textEvent("mallory", "three"))

	removed := store.RemoveByUsers([]string{"mallory"})

	assert.Equal(t, 2, removed)
	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "alice", snapshot[0].(*message.TextEvent).User)
}

func TestRemoveByUnknownUserIsNoOp(t *testing.T) {
	store := history.NewStore(10)
	store.Append(textEvent("alice", "hi"))

	assert.Zero(t, store.RemoveByUsers([]string{"nobody"}))
	assert.Equal(t, 1, store.Len())
}

func TestReplaceByIDsIsIdempotent(t *testing.T) {
	store := history.NewStore(10)
	ev := textEvent("alice", "redact me")
	ev.Emotes = []message.Emote{{ID: "Kappa", URL: "u"}}
	store.Append(ev)

	store.ReplaceByIDs([]string{ev.ID})
	store.ReplaceByIDs([]string{ev.ID})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	text := snapshot[0].(*message.TextEvent)
	assert.Equal(t, ev.ID, text.ID)
	assert.Equal(t, "alice", text.User)
	assert.Equal(t, message.Tombstone, text.Text)
	assert.Empty(t, text.Emotes)
}

func TestReplaceByUsersKeepsOrderAndIdentity(t *testing.T) {
	store := history.NewStore(10)
	first := textEvent("mallory", "one")
	second := textEvent("alice", "two")
	third := textEvent("mallory", "three")
	store.Append(first)
	store.Append(second)
	store.Append(third)

	replaced := store.ReplaceByUsers([]string{"mallory"})

	assert.Equal(t, 2, replaced)
	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, first.ID, snapshot[0].EventID())
	assert.Equal(t, message.Tombstone, snapshot[0].(*message.TextEvent).Text)
	assert.Equal(t, "two", snapshot[1].(*message.TextEvent).Text)
	assert.Equal(t, message.Tombstone, snapshot[2].(*message.TextEvent).Text)
}
