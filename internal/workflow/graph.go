package workflow

import (
	"fmt"
	"math"
	"time"
)

// Graph is the raw, declaration-ordered workflow description.
type Graph struct {
	order []string
	nodes map[string]*NodeSpec
}

// NodeSpec describes one named node as it was declared.
type NodeSpec struct {
	Name  string
	Start bool
	Edges []EdgeSpec
}

// EdgeSpec is an outgoing edge: visit Target Delay seconds after the owner.
type EdgeSpec struct {
	Target string
	Delay  float64
}

// Duration converts the edge delay from seconds, rounded to the nanosecond.
func (e EdgeSpec) Duration() time.Duration {
	return time.Duration(math.Round(e.Delay * float64(time.Second)))
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*NodeSpec)}
}

// Add appends a node declaration. It rejects duplicate node names, duplicate
// edge targets within a node and delays that are negative or not finite.
func (g *Graph) Add(spec NodeSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if _, exists := g.nodes[spec.Name]; exists {
		return fmt.Errorf("node %q declared more than once", spec.Name)
	}

	seen := make(map[string]struct{}, len(spec.Edges))
	for _, e := range spec.Edges {
		if _, dup := seen[e.Target]; dup {
			return fmt.Errorf("node %q: edge to %q declared more than once", spec.Name, e.Target)
		}
		seen[e.Target] = struct{}{}
		if math.IsNaN(e.Delay) || math.IsInf(e.Delay, 0) || e.Delay < 0 {
			return fmt.Errorf("node %q: edge to %q has invalid delay %v, must be a non-negative number of seconds", spec.Name, e.Target, e.Delay)
		}
	}

	stored := spec
	stored.Edges = append([]EdgeSpec(nil), spec.Edges...)
	g.nodes[spec.Name] = &stored
	g.order = append(g.order, spec.Name)
	return nil
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*NodeSpec, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns node names in declaration order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Len is the number of declared nodes.
func (g *Graph) Len() int {
	return len(g.order)
}
