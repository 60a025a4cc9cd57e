// Package executor is the "Execution Layer" of the application. It traverses
// a runtime tree built by the dag package, visiting the root at once and
// every other node after the delay of the edge leading to it, measured from
// the visit of its parent. Branches advance independently and in parallel.
//
// # Ordering
//
// A node's visit is always emitted before any of its children are scheduled,
// so children never overtake their parent. Siblings with different delays
// fire in delay order regardless of declaration order. Siblings that share a
// delay are released by a single timer and emitted in declaration order;
// this tie-break is deterministic and does not depend on the Go scheduler.
//
// # Concurrency
//
// Every group of equally delayed siblings is one goroutine in an errgroup.
// The only suspension point is the delay wait, which also honors context
// cancellation. Traverse returns when every scheduled visit has completed,
// after the first sink error, or after cancellation; in every case no
// goroutine outlives the call.
package executor

import (
	"context"
	"time"

	"github.com/vk/traverse/internal/dag"
	"github.com/vk/traverse/internal/sink"
)

// Executor runs a runtime tree to completion.
type Executor interface {
	Traverse(ctx context.Context, root *dag.Node) (Stats, error)
}

// Stats summarizes a finished traversal.
type Stats struct {
	// Visited is the number of visits emitted successfully.
	Visited int
	// Elapsed is the measured time from the root visit until the last
	// scheduled visit completed.
	Elapsed time.Duration
}

// Traverser is the default Executor. It is stateless between runs and may
// be reused, including concurrently.
type Traverser struct {
	sink sink.Sink
}

// New creates a Traverser that reports every visit to s.
func New(s sink.Sink) *Traverser {
	return &Traverser{sink: s}
}

// Traverse is a shorthand for New(s).Traverse(ctx, root).
func Traverse(ctx context.Context, root *dag.Node, s sink.Sink) error {
	_, err := New(s).Traverse(ctx, root)
	return err
}
