package yamljson

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
	"gopkg.in/yaml.v3"
)

// Loader implements config.Loader for .yaml and .yml files. It also reads
// most JSON, since JSON is close to YAML flow syntax, but JSONLoader is the
// one to use for .json files.
type Loader struct{}

// NewLoader creates a new YAML workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the file at path.
func (l *Loader) Load(ctx context.Context, path string) (*workflow.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &workflow.MalformedInputError{Source: path, Err: err}
	}
	return l.Parse(ctx, data, path)
}

// Parse parses an in-memory document. source is only used in messages.
func (l *Loader) Parse(ctx context.Context, data []byte, source string) (*workflow.Graph, error) {
	g, err := parseDocument(ctx, data)
	if err != nil {
		return nil, &workflow.MalformedInputError{Source: source, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("YAML loading complete.", "source", source, "nodes", g.Len())
	return g, nil
}

func parseDocument(ctx context.Context, data []byte) (*workflow.Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of node names", root.Line)
	}

	g := workflow.NewGraph()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], resolve(root.Content[i+1])
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: node name must be a scalar", key.Line)
		}

		spec, err := parseNode(ctx, key.Value, value)
		if err != nil {
			return nil, err
		}
		if err := g.Add(spec); err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return g, nil
}

func parseNode(ctx context.Context, name string, n *yaml.Node) (workflow.NodeSpec, error) {
	spec := workflow.NodeSpec{Name: name}
	if isNull(n) {
		return spec, nil
	}
	if n.Kind != yaml.MappingNode {
		return spec, fmt.Errorf("line %d: node %q must be a mapping", n.Line, name)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		switch key.Value {
		case "start":
			if isNull(value) {
				continue
			}
			if value.ShortTag() != "!!bool" {
				return spec, fmt.Errorf("line %d: node %q: start must be a boolean", value.Line, name)
			}
			if err := value.Decode(&spec.Start); err != nil {
				return spec, fmt.Errorf("line %d: node %q: %w", value.Line, name, err)
			}
		case "edges":
			edges, err := parseEdges(name, value)
			if err != nil {
				return spec, err
			}
			spec.Edges = edges
		default:
			ctxlog.FromContext(ctx).Debug("Ignoring unknown node key.", "node", name, "key", key.Value, "line", key.Line)
		}
	}
	return spec, nil
}

func parseEdges(from string, n *yaml.Node) ([]workflow.EdgeSpec, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: node %q: edges must be a mapping of target to delay", n.Line, from)
	}

	edges := make([]workflow.EdgeSpec, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: node %q: edge target must be a scalar", key.Line, from)
		}
		if tag := value.ShortTag(); tag != "!!int" && tag != "!!float" {
			return nil, fmt.Errorf("line %d: edge %s -> %s: delay must be a number", value.Line, from, key.Value)
		}

		var delay float64
		if err := value.Decode(&delay); err != nil {
			return nil, fmt.Errorf("line %d: edge %s -> %s: %w", value.Line, from, key.Value, err)
		}
		edges = append(edges, workflow.EdgeSpec{Target: key.Value, Delay: delay})
	}
	return edges, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
