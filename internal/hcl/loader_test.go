package hcl

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/traverse/internal/dag"
	"github.com/vk/traverse/internal/testutil"
	"github.com/vk/traverse/internal/workflow"
	"github.com/vk/traverse/internal/yamljson"
)

func parse(t *testing.T, src string) (*workflow.Graph, error) {
	t.Helper()
	return NewLoader().Parse(context.Background(), []byte(src), "test.hcl")
}

func TestParse_ReadsNodesAndEdgesInOrder(t *testing.T) {
	t.Parallel()

	// Arrange
	src := `
node "A" {
  start = true
  edges = {
    C = 0.7
    B = 0.5
    "D" = 2
  }
}
node "B" {}
node "C" { edges = null }
node "D" { start = false }
`

	// Act
	g, err := parse(t, src)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, g.Names())

	a, ok := g.Node("A")
	require.True(t, ok)
	assert.True(t, a.Start)
	assert.Equal(t, []workflow.EdgeSpec{
		{Target: "C", Delay: 0.7},
		{Target: "B", Delay: 0.5},
		{Target: "D", Delay: 2},
	}, a.Edges)

	c, ok := g.Node("C")
	require.True(t, ok)
	assert.Empty(t, c.Edges)

	d, ok := g.Node("D")
	require.True(t, ok)
	assert.False(t, d.Start)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `node "A" { start = true`},
		{name: "missing label", src: `node { start = true }`},
		{name: "unknown attribute", src: `node "A" { retries = 3 }`},
		{name: "unknown block type", src: `step "A" {}`},
		{name: "non boolean start", src: `node "A" { start = "yes please" }`},
		{name: "non number delay", src: `node "A" { edges = { B = "soon" } }`},
		{name: "negative delay", src: `node "A" { edges = { B = -1 } }
node "B" {}`},
		{name: "edges not an object", src: `node "A" { edges = [1, 2] }`},
		{name: "variable reference", src: `node "A" { edges = { B = var.delay } }`},
		{name: "duplicate node", src: `node "A" {}
node "A" {}`},
		{name: "duplicate edge target", src: `node "A" { edges = { B = 1, B = 2 } }`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := parse(t, tc.src)

			require.Error(t, err)
			assert.True(t, errors.Is(err, workflow.ErrMalformedInput), "got %v", err)
			assert.Contains(t, err.Error(), "invalid workflow spec")
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixture(t, "interleaved.hcl", testutil.InterleavedHCL)

	g, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	require.NoError(t, workflow.Validate(g))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), "/nonexistent/workflow.hcl")

	var malformed *workflow.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "/nonexistent/workflow.hcl", malformed.Source)
}

func TestLoad_BuildsSameTreeAsJSON(t *testing.T) {
	t.Parallel()

	// Arrange
	ctx := context.Background()
	hclPath := testutil.WriteFixture(t, "interleaved.hcl", testutil.InterleavedHCL)
	jsonPath := testutil.WriteFixture(t, "interleaved.json", testutil.InterleavedJSON)

	// Act
	fromHCL, err := NewLoader().Load(ctx, hclPath)
	require.NoError(t, err)
	fromJSON, err := yamljson.NewJSONLoader().Load(ctx, jsonPath)
	require.NoError(t, err)

	hclTree, err := dag.Build(ctx, fromHCL, "A")
	require.NoError(t, err)
	jsonTree, err := dag.Build(ctx, fromJSON, "A")
	require.NoError(t, err)

	// Assert
	if diff := cmp.Diff(jsonTree, hclTree); diff != "" {
		t.Errorf("trees differ (-json +hcl):\n%s", diff)
	}
}
