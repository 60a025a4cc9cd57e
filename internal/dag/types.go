package dag

import "time"

// Node is one vertex of the runtime tree. It is never mutated after Build.
type Node struct {
	// Name is the workflow node name. Several Nodes may share a name when
	// the description reaches the same node through different paths.
	Name string
	// Edges are the outgoing edges in declaration order.
	Edges []Edge
}

// Edge owns its Target subtree.
type Edge struct {
	// Delay is measured from the visit of the edge's owner.
	Delay  time.Duration
	Target *Node
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	count := 1
	for _, e := range n.Edges {
		count += e.Target.Count()
	}
	return count
}

// Walk visits the subtree in pre-order, children in declaration order. The
// offset passed to fn is the sum of edge delays from n. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, offset time.Duration) bool) {
	n.walk(0, fn)
}

func (n *Node) walk(offset time.Duration, fn func(*Node, time.Duration) bool) {
	if !fn(n, offset) {
		return
	}
	for _, e := range n.Edges {
		e.Target.walk(offset+e.Delay, fn)
	}
}
