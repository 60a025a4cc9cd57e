package app

import (
	"io"
	"log/slog"
)

// defaultLogLevel matches the CLI default: only warnings and errors reach
// stderr, leaving stdout to the visit lines.
const defaultLogLevel = slog.LevelWarn

// newLogger creates the App's logger. It does not touch the global logger,
// so every App stays isolated.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel maps a --log-level value to a slog level. Unknown values fall
// back to defaultLogLevel.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultLogLevel
	}
}
