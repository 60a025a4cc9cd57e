package app

import (
	"context"
	"fmt"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/dag"
	"github.com/vk/traverse/internal/executor"
	"github.com/vk/traverse/internal/sink"
	"github.com/vk/traverse/internal/workflow"
)

// Run loads, validates, builds and traverses the configured workflow. Any
// structural problem is reported before the first visit. Validation errors
// are returned as-is so callers can match them with errors.Is.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "workflow", a.config.WorkflowPath)

	if err := a.startHealthcheckServer(); err != nil {
		return err
	}
	defer a.closeHealthcheckServer(ctx)

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	tree, err := a.prepare(ctx)
	if err != nil {
		return err
	}

	s, closeSinks, err := a.sinks(ctx)
	if err != nil {
		return err
	}
	defer closeSinks()

	a.logger.Info("🚀 Starting traversal...", "root", tree.Name, "nodes", tree.Count())
	stats, err := executor.New(s).Traverse(ctx, tree)
	if err != nil {
		return fmt.Errorf("traversal failed after %d visits: %w", stats.Visited, err)
	}
	a.logger.Info("🏁 Traversal finished.", "visited", stats.Visited, "elapsed", stats.Elapsed)

	a.logger.Debug("App.Run method finished.")
	return nil
}

// prepare turns the workflow file into a runtime tree.
func (a *App) prepare(ctx context.Context) (*dag.Node, error) {
	g, err := a.loader.Load(ctx, a.config.WorkflowPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Workflow loaded.", "nodes", g.Len())

	if err := workflow.Validate(g); err != nil {
		return nil, err
	}
	root, err := workflow.StartNode(g)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Workflow validated.", "root", root)

	return dag.Build(ctx, g, root)
}

// sinks assembles the visit sinks for one run. The returned func releases
// any connections they hold.
func (a *App) sinks(ctx context.Context) (sink.Sink, func(), error) {
	sinks := []sink.Sink{
		sink.NewConsole(a.outW, a.config.WithTimestamps),
		sink.NewLog(a.logger),
		a.metrics,
	}
	closeFn := func() {}

	if a.config.ObserverURL != "" {
		obs, err := sink.NewSocketIO(ctx, sink.SocketIOConfig{
			URL:                a.config.ObserverURL,
			Namespace:          a.config.ObserverNamespace,
			Event:              a.config.ObserverEvent,
			InsecureSkipVerify: a.config.ObserverInsecure,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to observer: %w", err)
		}
		sinks = append(sinks, obs)
		closeFn = func() {
			if err := obs.Close(); err != nil {
				a.logger.Warn("Closing observer connection failed.", "error", err)
			}
		}
	}

	return sink.Multi(sinks...), closeFn, nil
}
