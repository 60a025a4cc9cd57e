// This file translates decoded HCL node blocks into workflow node specs.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateNode converts one decoded block into a NodeSpec.
func translateNode(ctx context.Context, b *nodeBlock) (workflow.NodeSpec, error) {
	spec := workflow.NodeSpec{Name: b.Name}
	if b.Start != nil {
		spec.Start = *b.Start
	}

	if !isExprDefined(b.Edges) {
		ctxlog.FromContext(ctx).Debug("Node has no edges attribute.", "node", b.Name)
		return spec, nil
	}

	edges, err := translateEdges(b.Edges)
	if err != nil {
		return spec, fmt.Errorf("node %q: %w", b.Name, err)
	}
	spec.Edges = edges
	return spec, nil
}

// isExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check alone is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

// translateEdges reads an object constructor such as `{ B = 0.5, "C" = 1 }`
// pair by pair, keeping source order. A literal null means no edges.
func translateEdges(expr hcl.Expression) ([]workflow.EdgeSpec, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		val, valDiags := expr.Value(nil)
		if !valDiags.HasErrors() && val.IsNull() {
			return nil, nil
		}
		return nil, fmt.Errorf("edges must be an object of target = delay pairs: %w", diags)
	}

	edges := make([]workflow.EdgeSpec, 0, len(pairs))
	for _, pair := range pairs {
		target, err := evalString(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("edge target: %w", err)
		}
		delay, err := evalNumber(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("edge to %q: %w", target, err)
		}
		edges = append(edges, workflow.EdgeSpec{Target: target, Delay: delay})
	}
	return edges, nil
}

func evalString(expr hcl.Expression) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot use %s as a node name: %w", val.Type().FriendlyName(), err)
	}
	if str.IsNull() || !str.IsKnown() {
		return "", fmt.Errorf("node name must be a known, non-null string")
	}
	return str.AsString(), nil
}

func evalNumber(expr hcl.Expression) (float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("delay must be a number of seconds, got %s", val.Type().FriendlyName())
	}
	if num.IsNull() || !num.IsKnown() {
		return 0, fmt.Errorf("delay must be a known, non-null number")
	}

	var seconds float64
	if err := gocty.FromCtyValue(num, &seconds); err != nil {
		return 0, fmt.Errorf("delay out of range: %w", err)
	}
	return seconds, nil
}
