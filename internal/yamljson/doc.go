// Package yamljson loads workflow descriptions written in JSON or YAML.
//
// The document is a mapping of node name to an optional "start" boolean and
// an optional "edges" mapping of target name to delay in seconds. Both
// loaders keep mapping keys in source order: YAML through yaml.Node, JSON
// through the token stream of encoding/json.
package yamljson
