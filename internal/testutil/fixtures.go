// Package testutil holds helpers shared by tests across packages: workflow
// fixtures, a recording sink and timing assertions.
package testutil

// JSON workflow descriptions used across test suites.
const (
	TrivialJSON = `{"A": {"start": true, "edges": {}}}`

	SimpleJSON = `{
  "A": {"start": true, "edges": {"B": 0.5, "C": 0.7}},
  "B": {"edges": {}},
  "C": {"edges": {}}
}`

	InterleavedJSON = `{
  "A": {"start": true, "edges": {"B": 0.4, "C": 0.7}},
  "B": {"edges": {"D": 0.1}},
  "C": {"edges": {}},
  "D": {"edges": {}}
}`

	TwoStartsJSON = `{"A": {"start": true, "edges": {"B": 0.1}}, "B": {"start": true}}`

	NoStartsJSON = `{"A": {"edges": {"B": 0.1}}, "B": {}}`

	CyclicalJSON = `{
  "A": {"start": true, "edges": {"B": 0.1}},
  "B": {"edges": {"A": 0.1}}
}`

	// InvalidJSON is TrivialJSON with its last three characters cut off.
	InvalidJSON = `{"A": {"start": true, "edges": {`
)

// InterleavedHCL describes the same graph as InterleavedJSON.
const InterleavedHCL = `
node "A" {
  start = true
  edges = {
    B = 0.4
    C = 0.7
  }
}

node "B" {
  edges = { D = 0.1 }
}

node "C" {}

node "D" {}
`
