package yamljson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
)

// JSONLoader implements config.Loader for .json files.
type JSONLoader struct{}

// NewJSONLoader creates a new JSON workflow loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load reads and parses the file at path.
func (l *JSONLoader) Load(ctx context.Context, path string) (*workflow.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &workflow.MalformedInputError{Source: path, Err: err}
	}
	return l.Parse(ctx, data, path)
}

// Parse parses an in-memory JSON document. source is only used in messages.
func (l *JSONLoader) Parse(ctx context.Context, data []byte, source string) (*workflow.Graph, error) {
	g, err := parseJSON(ctx, data)
	if err != nil {
		return nil, &workflow.MalformedInputError{Source: source, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("JSON loading complete.", "source", source, "nodes", g.Len())
	return g, nil
}

// member is one key/value pair of a JSON object, in source order.
type member struct {
	key   string
	value any
}

// object is a JSON object that remembers key order. Other values decode
// to string, json.Number, bool, []any or nil.
type object []member

func parseJSON(ctx context.Context, data []byte) (*workflow.Graph, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc, err := readValue(dec)
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty document")
	}
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("offset %d: unexpected data after the top-level value", dec.InputOffset())
	}

	root, ok := doc.(object)
	if !ok {
		return nil, errors.New("top level must be an object of node names")
	}

	g := workflow.NewGraph()
	for _, m := range root {
		spec, err := jsonNode(ctx, m.key, m.value)
		if err != nil {
			return nil, err
		}
		if err := g.Add(spec); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// readValue reads one complete value from the token stream. It returns
// io.EOF only when the input holds no value at all.
func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		var obj object
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("offset %d: object key must be a string", dec.InputOffset())
			}
			value, err := readValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj = append(obj, member{key: key, value: value})
		}
		if obj == nil {
			obj = object{}
		}
		return obj, closeDelim(dec, '}')
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := readValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			arr = append(arr, value)
		}
		return arr, closeDelim(dec, ']')
	default:
		return nil, fmt.Errorf("offset %d: unexpected %q", dec.InputOffset(), delim)
	}
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return unexpectedEOF(err)
	}
	if tok != want {
		return fmt.Errorf("offset %d: expected %q", dec.InputOffset(), want)
	}
	return nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func jsonNode(ctx context.Context, name string, value any) (workflow.NodeSpec, error) {
	spec := workflow.NodeSpec{Name: name}
	if value == nil {
		return spec, nil
	}
	fields, ok := value.(object)
	if !ok {
		return spec, fmt.Errorf("node %q must be an object", name)
	}

	for _, f := range fields {
		switch f.key {
		case "start":
			switch v := f.value.(type) {
			case nil:
			case bool:
				spec.Start = v
			default:
				return spec, fmt.Errorf("node %q: start must be a boolean", name)
			}
		case "edges":
			edges, err := jsonEdges(name, f.value)
			if err != nil {
				return spec, err
			}
			spec.Edges = edges
		default:
			ctxlog.FromContext(ctx).Debug("Ignoring unknown node key.", "node", name, "key", f.key)
		}
	}
	return spec, nil
}

func jsonEdges(from string, value any) ([]workflow.EdgeSpec, error) {
	if value == nil {
		return nil, nil
	}
	pairs, ok := value.(object)
	if !ok {
		return nil, fmt.Errorf("node %q: edges must be an object of target to delay", from)
	}

	edges := make([]workflow.EdgeSpec, 0, len(pairs))
	for _, p := range pairs {
		num, ok := p.value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("edge %s -> %s: delay must be a number", from, p.key)
		}
		delay, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", from, p.key, err)
		}
		edges = append(edges, workflow.EdgeSpec{Target: p.key, Delay: delay})
	}
	return edges, nil
}
