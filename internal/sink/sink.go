// Package sink receives visit observations from the executor. Every Sink
// serializes concurrent calls so one observation is never interleaved with
// another, although observations from parallel branches arrive in any order.
package sink

import (
	"context"
	"errors"
	"time"
)

// TimestampLayout renders UTC with microsecond precision, RFC 3339 compatible.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Visit is a single node visit as seen by the executor.
type Visit struct {
	// Name of the visited node.
	Name string
	// At is the wall-clock time of the visit, in UTC.
	At time.Time
	// Offset is the planned time since the root visit: the sum of edge
	// delays on the path from the root.
	Offset time.Duration
	// Elapsed is the measured time since the root visit.
	Elapsed time.Duration
	// Depth is the number of edges between the root and this node.
	Depth int
}

// Timestamp formats At with TimestampLayout.
func (v Visit) Timestamp() string {
	return FormatTimestamp(v.At)
}

// Sink consumes visits. A returned error aborts the whole traversal.
type Sink interface {
	Visit(ctx context.Context, v Visit) error
}

// Func adapts an ordinary function to the Sink interface.
type Func func(ctx context.Context, v Visit) error

// Visit calls f(ctx, v).
func (f Func) Visit(ctx context.Context, v Visit) error {
	return f(ctx, v)
}

// FormatTimestamp renders t in UTC as YYYY-MM-DDTHH:MM:SS.ffffffZ.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type multi []Sink

// Multi forwards every visit to each sink in order and stops at the first
// error. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Visit(ctx context.Context, v Visit) error {
	for _, s := range m {
		if err := s.Visit(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// ErrClosed is returned by sinks that were used after Close.
var ErrClosed = errors.New("sink is closed")
