package connectors

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/deforce/multichat/internal/message"
)

var consolePlatform = message.Platform{ID: "console", Icon: "/img/console.png"}

// Console turns lines read from an input stream into chat events. It backs
// the CLI mode, where the operator can inject test messages.
type Console struct {
	queue Queue
	in    io.Reader
	user  string
}

// NewConsole creates a console connector reading from in.
func NewConsole(queue Queue, in io.Reader) *Console {
	return &Console{queue: queue, in: in, user: "console"}
}

func (c *Console) Name() string  { return "console" }
func (c *Console) Priority() int { return 90 }

// Run reads lines until EOF or context cancellation. Blank lines are skipped.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev := message.NewTextEvent(consolePlatform, c.user, line)
		if err := c.queue.Dispatch(ctx, ev); err != nil {
			slog.Error("Unable to enqueue console message", "error", err)
		}
	}
	return scanner.Err()
}
