// Package dag is the "Build Layer" of the application. It turns a validated
// workflow.Graph into the immutable, tree-shaped runtime structure that the
// executor traverses.
//
// A description may share descendants between several parents. The runtime
// tree does not: every root-to-node path gets its own Node, so the tree is
// acyclic by construction and every subtree is owned by exactly one edge.
package dag
