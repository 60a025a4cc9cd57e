package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checks via errors.Is. Every error produced
// by this package and by the loaders wraps exactly one of them.
var (
	ErrMalformedInput     = errors.New("invalid workflow spec: malformed input")
	ErrNoStartNode        = errors.New("invalid workflow spec: no start nodes found")
	ErrMultipleStartNodes = errors.New("invalid workflow spec: more than one start node found")
	ErrCycleDetected      = errors.New("invalid workflow spec: cycle found")
	ErrDanglingEdge       = errors.New("invalid workflow spec: edge references an unknown node")
)

// MalformedInputError reports a description that could not be turned into a
// Graph at all.
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrMalformedInput, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformedInput, e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}

// MultipleStartNodesError lists every node marked as start, in declaration order.
type MultipleStartNodesError struct {
	Names []string
}

func (e *MultipleStartNodesError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMultipleStartNodes, strings.Join(e.Names, ", "))
}

func (e *MultipleStartNodesError) Unwrap() error { return ErrMultipleStartNodes }

// CycleError carries the offending path. The last element repeats an earlier one.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// DanglingEdgeError reports an edge whose target is not declared. From is
// empty when the missing name was requested directly (e.g. as a build root).
type DanglingEdgeError struct {
	From string
	To   string
}

func (e *DanglingEdgeError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s: %q", ErrDanglingEdge, e.To)
	}
	return fmt.Sprintf("%s: %q -> %q", ErrDanglingEdge, e.From, e.To)
}

func (e *DanglingEdgeError) Unwrap() error { return ErrDanglingEdge }
