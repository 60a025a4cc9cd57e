package workflow

// StartNode returns the name of the single node marked as start.
func StartNode(g *Graph) (string, error) {
	var starts []string
	for _, name := range g.order {
		if g.nodes[name].Start {
			starts = append(starts, name)
		}
	}

	switch len(starts) {
	case 0:
		return "", ErrNoStartNode
	case 1:
		return starts[0], nil
	default:
		return "", &MultipleStartNodesError{Names: starts}
	}
}

// Validate accepts a graph that has exactly one start node and no cycle
// reachable from it. Edges reachable from the start must point at declared
// nodes. Components that cannot be reached from the start are not inspected.
func Validate(g *Graph) error {
	start, err := StartNode(g)
	if err != nil {
		return err
	}
	return checkReachable(g, start)
}

// frame is one entry of the explicit depth-first stack: a node on the
// current path and the index of the next edge to follow.
type frame struct {
	name string
	next int
}

// checkReachable walks every path from start. A node seen again on the same
// path is a cycle. A node whose whole reachable subgraph has already been
// explored cannot close a cycle through the current path, so it is skipped.
func checkReachable(g *Graph, start string) error {
	onPath := map[string]bool{start: true}
	done := make(map[string]bool)
	stack := []frame{{name: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		spec := g.nodes[top.name]

		if top.next == len(spec.Edges) {
			delete(onPath, top.name)
			done[top.name] = true
			stack = stack[:len(stack)-1]
			continue
		}

		edge := spec.Edges[top.next]
		top.next++

		if _, ok := g.nodes[edge.Target]; !ok {
			return &DanglingEdgeError{From: top.name, To: edge.Target}
		}
		if onPath[edge.Target] {
			return &CycleError{Path: cyclePath(stack, edge.Target)}
		}
		if done[edge.Target] {
			continue
		}

		onPath[edge.Target] = true
		stack = append(stack, frame{name: edge.Target})
	}
	return nil
}

func cyclePath(stack []frame, repeated string) []string {
	var path []string
	for i, f := range stack {
		if f.name == repeated {
			for _, rest := range stack[i:] {
				path = append(path, rest.name)
			}
			break
		}
	}
	return append(path, repeated)
}
