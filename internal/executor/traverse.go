package executor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/dag"
	"github.com/vk/traverse/internal/sink"
	"golang.org/x/sync/errgroup"
)

// Traverse implements Executor.
func (t *Traverser) Traverse(ctx context.Context, root *dag.Node) (Stats, error) {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	r := &run{sink: t.sink, group: g, started: time.Now()}
	logger.Debug("Traversal starting.", "root", root.Name)

	// The root is visited synchronously; everything below it runs in g.
	err := r.visit(gctx, []*dag.Node{root}, 0, 0)
	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}

	stats := Stats{Visited: int(r.visited.Load()), Elapsed: time.Since(r.started)}
	if err != nil {
		logger.Warn("Traversal stopped early.", "visited", stats.Visited, "error", err)
		return stats, err
	}

	logger.Debug("Traversal finished.", "visited", stats.Visited, "elapsed", stats.Elapsed)
	return stats, nil
}

// run holds the state shared by all goroutines of one traversal. The sink
// serializes itself; visited is the only other shared value.
type run struct {
	sink    sink.Sink
	group   *errgroup.Group
	started time.Time
	visited atomic.Int64
}

// batch is a set of siblings released by one timer.
type batch struct {
	delay   time.Duration
	targets []*dag.Node
}

// visit emits nodes in order, then schedules the children of each one.
// All nodes share the same planned offset and depth.
func (r *run) visit(ctx context.Context, nodes []*dag.Node, offset time.Duration, depth int) error {
	logger := ctxlog.FromContext(ctx)
	visitedAt := make([]time.Time, len(nodes))

	for i, n := range nodes {
		now := time.Now()
		v := sink.Visit{
			Name:    n.Name,
			At:      now.UTC(),
			Offset:  offset,
			Elapsed: now.Sub(r.started),
			Depth:   depth,
		}
		logger.Debug("Visiting node.", "node", n.Name, "offset", offset, "elapsed", v.Elapsed)
		if err := r.sink.Visit(ctx, v); err != nil {
			return fmt.Errorf("visiting node %q: %w", n.Name, err)
		}
		r.visited.Add(1)
		visitedAt[i] = now
	}

	for i, n := range nodes {
		r.schedule(ctx, n, visitedAt[i], offset, depth)
	}
	return nil
}

// schedule launches one task per distinct child delay. Each task waits until
// parentAt+delay and then visits its batch.
func (r *run) schedule(ctx context.Context, parent *dag.Node, parentAt time.Time, offset time.Duration, depth int) {
	for _, b := range batchByDelay(parent.Edges) {
		r.group.Go(func() error {
			if err := sleepUntil(ctx, parentAt.Add(b.delay)); err != nil {
				return err
			}
			return r.visit(ctx, b.targets, offset+b.delay, depth+1)
		})
	}
}

// batchByDelay groups edges by delay. Batches appear in the order their
// delay was first declared and keep declaration order inside each batch.
func batchByDelay(edges []dag.Edge) []batch {
	var batches []batch
	index := make(map[time.Duration]int, len(edges))
	for _, e := range edges {
		i, ok := index[e.Delay]
		if !ok {
			i = len(batches)
			index[e.Delay] = i
			batches = append(batches, batch{delay: e.Delay})
		}
		batches[i].targets = append(batches[i].targets, e.Target)
	}
	return batches
}

// sleepUntil blocks until deadline or until ctx is done.
func sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
