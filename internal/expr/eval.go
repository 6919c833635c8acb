package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/born-ml/scalargrad/internal/autodiff"
)

// Evaluation holds the nodes built for one Eval call.
type Evaluation struct {
	Root   *autodiff.Value
	Values map[string]*autodiff.Value // every attribute reachable from the root
	order  []string
}

// Names returns the evaluated attribute names in source order.
func (e *Evaluation) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// visitation states for cycle detection.
const (
	unvisited = iota
	inProgress
	done
)

// evaluator builds nodes for one Eval call.
type evaluator struct {
	prog   *Program
	values map[string]*autodiff.Value
	state  map[string]int
}

// Eval builds the graph of the root attribute.
//
// overrides replaces the node of the named attributes, which lets callers
// feed their own leaves (for example to run a gradient check). Inputs without
// an override become fresh leaves holding their constant value.
func (p *Program) Eval(root string, overrides map[string]*autodiff.Value) (*Evaluation, error) {
	if _, ok := p.attrs[root]; !ok {
		return nil, fmt.Errorf("%w: root %q", ErrUnknownAttribute, root)
	}

	ev := &evaluator{
		prog:   p,
		values: make(map[string]*autodiff.Value, len(p.attrs)),
		state:  make(map[string]int, len(p.attrs)),
	}
	for name, v := range overrides {
		if _, ok := p.attrs[name]; !ok {
			return nil, fmt.Errorf("%w: override %q", ErrUnknownAttribute, name)
		}
		if v == nil {
			return nil, fmt.Errorf("%w: override %q is nil", ErrUnsupportedExpression, name)
		}
		ev.values[name] = v
		ev.state[name] = done
	}

	out, err := ev.attribute(root, p.attrs[root].NameRange)
	if err != nil {
		return nil, err
	}

	var reachable map[*autodiff.Value]struct{}
	if len(overrides) > 0 {
		reachable = make(map[*autodiff.Value]struct{})
		for _, n := range autodiff.NewTape(out).Nodes() {
			reachable[n] = struct{}{}
		}
	}

	result := &Evaluation{Root: out, Values: make(map[string]*autodiff.Value)}
	for _, name := range p.order {
		if ev.state[name] != done {
			continue
		}
		if _, overridden := overrides[name]; overridden {
			if _, ok := reachable[ev.values[name]]; !ok {
				continue
			}
		}
		result.Values[name] = ev.values[name]
		result.order = append(result.order, name)
	}

	p.logger.Debug("Expression evaluated.", "root", root, "value", out.Data(), "attributes", len(result.order))
	return result, nil
}

// attribute returns the node of the named attribute, building it on first use.
func (ev *evaluator) attribute(name string, ref hcl.Range) (*autodiff.Value, error) {
	attr, ok := ev.prog.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %q", ErrUnknownAttribute, ref, name)
	}

	switch ev.state[name] {
	case done:
		return ev.values[name], nil
	case inProgress:
		return nil, fmt.Errorf("%w: %s: %q", ErrCycle, ref, name)
	}

	ev.state[name] = inProgress
	var (
		v   *autodiff.Value
		err error
	)
	if x, isInput := ev.prog.constants[name]; isInput {
		v = autodiff.New(x)
	} else {
		v, err = ev.build(attr.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}

	ev.values[name] = v
	ev.state[name] = done
	return v, nil
}

// build lowers an expression onto the autodiff operations.
func (ev *evaluator) build(expr hclsyntax.Expression) (*autodiff.Value, error) {
	if isConstant(expr) {
		x, err := constant(expr)
		if err != nil {
			return nil, err
		}
		return autodiff.Lift(x), nil
	}

	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return ev.build(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return nil, fmt.Errorf("%w: %s: only plain attribute names can be referenced", ErrUnsupportedExpression, e.Range())
		}
		return ev.attribute(e.Traversal.RootName(), e.Range())

	case *hclsyntax.BinaryOpExpr:
		return ev.binary(e)

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return nil, fmt.Errorf("%w: %s: operator %s", ErrUnsupportedExpression, e.Range(), operatorName(e.Op))
		}
		x, err := ev.build(e.Val)
		if err != nil {
			return nil, err
		}
		return x.Mul(autodiff.Scalar(-1)), nil

	case *hclsyntax.FunctionCallExpr:
		return ev.call(e)

	default:
		return nil, fmt.Errorf("%w: %s: %T", ErrUnsupportedExpression, expr.Range(), expr)
	}
}

func (ev *evaluator) binary(e *hclsyntax.BinaryOpExpr) (*autodiff.Value, error) {
	switch e.Op {
	case hclsyntax.OpAdd, hclsyntax.OpSubtract, hclsyntax.OpMultiply, hclsyntax.OpDivide:
	default:
		return nil, fmt.Errorf("%w: %s: operator %s", ErrUnsupportedExpression, e.Range(), operatorName(e.Op))
	}

	lhs, err := ev.build(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := ev.build(e.RHS)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case hclsyntax.OpAdd:
		return lhs.Add(rhs), nil
	case hclsyntax.OpSubtract:
		return lhs.Add(rhs.Mul(autodiff.Scalar(-1))), nil
	case hclsyntax.OpMultiply:
		return lhs.Mul(rhs), nil
	default:
		inv, err := rhs.Pow(autodiff.Scalar(-1))
		if err != nil {
			return nil, err
		}
		return lhs.Mul(inv), nil
	}
}

// call handles pow(base, exponent), the only supported function.
func (ev *evaluator) call(e *hclsyntax.FunctionCallExpr) (*autodiff.Value, error) {
	if e.Name != "pow" {
		return nil, fmt.Errorf("%w: %s: function %q", ErrUnsupportedExpression, e.Range(), e.Name)
	}
	if len(e.Args) != 2 || e.ExpandFinal {
		return nil, fmt.Errorf("%w: %s: pow takes exactly two arguments", ErrUnsupportedExpression, e.Range())
	}

	base, err := ev.build(e.Args[0])
	if err != nil {
		return nil, err
	}

	var exponent autodiff.Operand
	if isConstant(e.Args[1]) {
		p, err := constant(e.Args[1])
		if err != nil {
			return nil, err
		}
		exponent = autodiff.Scalar(p)
	} else {
		node, err := ev.build(e.Args[1])
		if err != nil {
			return nil, err
		}
		exponent = node
	}

	out, err := base.Pow(exponent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Args[1].Range(), err)
	}
	return out, nil
}

// operatorName names an HCL operation for error messages.
func operatorName(op *hclsyntax.Operation) string {
	switch op {
	case hclsyntax.OpLogicalOr:
		return "||"
	case hclsyntax.OpLogicalAnd:
		return "&&"
	case hclsyntax.OpLogicalNot:
		return "!"
	case hclsyntax.OpEqual:
		return "=="
	case hclsyntax.OpNotEqual:
		return "!="
	case hclsyntax.OpGreaterThan:
		return ">"
	case hclsyntax.OpGreaterThanOrEqual:
		return ">="
	case hclsyntax.OpLessThan:
		return "<"
	case hclsyntax.OpLessThanOrEqual:
		return "<="
	case hclsyntax.OpModulo:
		return "%"
	default:
		return "?"
	}
}
