// Package observability bundles the engine's structured logging and
// Prometheus metrics.
package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds a slog.Logger writing to stderr in the configured
// format ("json" or "text") at the configured level. Unknown values fall
// back to JSON at info.
func NewLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
