// Package workflow holds the format-agnostic description of a timed workflow
// (a named node set joined by delayed edges) and the validator that decides
// whether a description may be built and executed.
//
// A Graph keeps both node and edge declaration order. Loaders in the hcl and
// yamljson packages produce it; the dag package consumes it once Validate has
// accepted it.
package workflow
