package hub

import (
	"log/slog"

	"github.com/deforce/multichat/internal/history"
	"github.com/deforce/multichat/internal/message"
	"github.com/deforce/multichat/internal/telemetry"
)

// CommandProcessor is a state-free router from moderation command names to
// history mutators. Unknown commands are logged and ignored.
type CommandProcessor struct {
	store *history.Store
}

func newCommandProcessor(store *history.Store) *CommandProcessor {
	return &CommandProcessor{store: store}
}

// Apply executes one command against the history store and reports whether
// the command was recognized. Requests naming unknown ids or users are
// no-ops, not errors.
func (p *CommandProcessor) Apply(name string, ids, users []string) bool {
	switch name {
	case message.CmdRemoveByIDs:
		removed := p.store.RemoveByIDs(ids)
		slog.Info("Removed messages from history", "ids", len(ids), "removed", removed)
	case message.CmdRemoveByUsers:
		removed := p.store.RemoveByUsers(users)
		slog.Info("Removed user messages from history", "users", users, "removed", removed)
	case message.CmdReplaceByIDs:
		replaced := p.store.ReplaceByIDs(ids)
		slog.Info("Replaced messages in history", "ids", len(ids), "replaced", replaced)
	case message.CmdReplaceByUsers:
		replaced := p.store.ReplaceByUsers(users)
		slog.Info("Replaced user messages in history", "users", users, "replaced", replaced)
	case message.CmdReload:
		// Nothing to mutate; the command only instructs clients.
	default:
		slog.Warn("Ignoring unknown command", "command", name)
		return false
	}

	telemetry.CommandsHandled.Inc()
	telemetry.HistoryLength.Set(float64(p.store.Len()))
	return true
}
