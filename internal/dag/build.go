package dag

import (
	"context"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
)

// Build materializes the runtime tree rooted at root. The graph must already
// have passed workflow.Validate: Build does not look for cycles and would not
// terminate on a cyclic description. A reference to an undeclared node is
// reported as a *workflow.DanglingEdgeError.
func Build(ctx context.Context, g *workflow.Graph, root string) (*Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting tree construction.", "root", root)

	if _, ok := g.Node(root); !ok {
		return nil, &workflow.DanglingEdgeError{To: root}
	}

	tree, err := buildNode(g, root)
	if err != nil {
		return nil, err
	}

	logger.Debug("Build: Tree construction successful.", "declared_nodes", g.Len(), "tree_nodes", tree.Count())
	return tree, nil
}

// buildNode creates a fresh Node for name. Shared descendants are rebuilt
// for every parent that reaches them.
func buildNode(g *workflow.Graph, name string) (*Node, error) {
	spec, _ := g.Node(name)
	n := &Node{Name: name}
	if len(spec.Edges) == 0 {
		return n, nil
	}

	n.Edges = make([]Edge, 0, len(spec.Edges))
	for _, e := range spec.Edges {
		if _, ok := g.Node(e.Target); !ok {
			return nil, &workflow.DanglingEdgeError{From: name, To: e.Target}
		}
		child, err := buildNode(g, e.Target)
		if err != nil {
			return nil, err
		}
		n.Edges = append(n.Edges, Edge{Delay: e.Duration(), Target: child})
	}
	return n, nil
}
