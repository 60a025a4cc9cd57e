package sink

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console writes one line per visit: the node name, optionally followed by
// ", " and the visit timestamp.
type Console struct {
	mu             sync.Mutex
	w              io.Writer
	withTimestamps bool
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer, withTimestamps bool) *Console {
	return &Console{w: w, withTimestamps: withTimestamps}
}

// Visit implements Sink.
func (c *Console) Visit(_ context.Context, v Visit) error {
	line := v.Name
	if c.withTimestamps {
		line += ", " + v.Timestamp()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, line); err != nil {
		return fmt.Errorf("writing visit of %q: %w", v.Name, err)
	}
	return nil
}
