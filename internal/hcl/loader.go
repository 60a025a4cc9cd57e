package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the shape of a workflow file.
type fileRoot struct {
	Nodes []*nodeBlock `hcl:"node,block"`
}

// nodeBlock is one `node "<name>" { ... }` block.
type nodeBlock struct {
	Name  string         `hcl:"name,label"`
	Start *bool          `hcl:"start,optional"`
	Edges hcl.Expression `hcl:"edges,optional"`
}

// Load parses the HCL file at path.
func (l *Loader) Load(ctx context.Context, path string) (*workflow.Graph, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, &workflow.MalformedInputError{Source: path, Err: diags}
	}
	return l.decode(ctx, file, path)
}

// Parse parses HCL source held in memory. filename is only used in messages.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*workflow.Graph, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &workflow.MalformedInputError{Source: filename, Err: diags}
	}
	return l.decode(ctx, file, filename)
}

func (l *Loader) decode(ctx context.Context, file *hcl.File, source string) (*workflow.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, &workflow.MalformedInputError{Source: source, Err: diags}
	}

	g := workflow.NewGraph()
	for _, block := range root.Nodes {
		spec, err := translateNode(ctx, block)
		if err != nil {
			return nil, &workflow.MalformedInputError{Source: source, Err: err}
		}
		if err := g.Add(spec); err != nil {
			return nil, &workflow.MalformedInputError{Source: source, Err: err}
		}
	}

	logger.Debug("HCL loading complete.", "source", source, "nodes", g.Len())
	return g, nil
}
