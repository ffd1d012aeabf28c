package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Services and handlers take a
// *slog.Logger and use the Context variants so request_id attrs flow through.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
