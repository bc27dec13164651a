// Package logging initializes the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// New initializes a new slog logger and sets it as the default. The format
// is "text" for development or "json" for production.
func New(format string) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	}

	slog.SetDefault(slog.New(handler))
}
