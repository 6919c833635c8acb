package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isConstant reports whether expr references no attributes and calls no
// functions, so HCL can evaluate it without a context.
func isConstant(expr hclsyntax.Expression) bool {
	if len(expr.Variables()) > 0 {
		return false
	}
	hasCall := false
	hclsyntax.VisitAll(expr, func(n hclsyntax.Node) hcl.Diagnostics {
		if _, ok := n.(*hclsyntax.FunctionCallExpr); ok {
			hasCall = true
		}
		return nil
	})
	return !hasCall
}

// constant evaluates a variable-free expression to a float64.
func constant(expr hclsyntax.Expression) (float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedExpression, diags.Error())
	}
	return toFloat(val, expr.Range())
}

// toFloat converts a known, non-null cty.Number into a float64.
func toFloat(val cty.Value, rng hcl.Range) (float64, error) {
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.Number {
		return 0, fmt.Errorf("%w: %s: got %s", ErrNotANumber, rng, val.Type().FriendlyName())
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotANumber, rng, err)
	}
	return f, nil
}
