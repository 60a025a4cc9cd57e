package sink

import (
	"context"
	"log/slog"
)

// Log records every visit as an Info record, whether or not timestamps are
// shown on the console.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a sink that logs through logger. slog handlers serialize
// their own writes.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Visit implements Sink.
func (l *Log) Visit(ctx context.Context, v Visit) error {
	l.logger.InfoContext(ctx, "Node visited.",
		"node", v.Name,
		"timestamp", v.Timestamp(),
		"offset", v.Offset,
		"elapsed", v.Elapsed,
		"depth", v.Depth,
	)
	return nil
}
