// Package autodiff implements reverse-mode automatic differentiation over
// scalar values.
//
// Every Value remembers the operation that produced it and the operand
// Values it was computed from. Together they form a directed acyclic
// computation graph. Backward walks that graph from a root in reverse
// topological order and accumulates d(root)/d(node) into each node's
// gradient using the chain rule.
//
// Example:
//
//	a := autodiff.New(3)
//	b := autodiff.New(4)
//	f := a.Add(b).Mul(a) // f = (a + b) * a = 21
//	f.Backward()
//	a.Grad() // 10 = 2a + b
//	b.Grad() // 3 = a
//
// The engine is single-threaded. Values shared between goroutines must be
// synchronized by the caller.
package autodiff

import (
	"fmt"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// Value is a scalar node in the computation graph.
//
// data is fixed at construction. grad starts at 0 and is only ever
// incremented by the backward walk (or reset by ZeroGrad and the root seed).
type Value struct {
	data     float64
	grad     float64
	operands []*Value // nil for leaves; may repeat a node, e.g. x*x
	op       ops.Op
}

// New creates a leaf Value with zero gradient and no operands.
func New(x float64) *Value {
	return &Value{
		data: x,
		op:   ops.LeafOp(),
	}
}

// Lift converts a raw number into a leaf Value.
// Every operation lifts Scalar operands through Lift.
func Lift(x float64) *Value {
	return New(x)
}

// newResult allocates the output node of op applied to operands.
func newResult(op ops.Op, operands ...*Value) *Value {
	inputs := make([]float64, len(operands))
	for i, v := range operands {
		inputs[i] = v.data
	}
	return &Value{
		data:     op.Forward(inputs...),
		operands: operands,
		op:       op,
	}
}

// Data returns the forward-computed value.
func (v *Value) Data() float64 {
	return v.data
}

// Grad returns the accumulated gradient of the last backward root with
// respect to this value.
func (v *Value) Grad() float64 {
	return v.grad
}

// Op returns the operation that produced this value.
func (v *Value) Op() ops.Op {
	return v.op
}

// IsLeaf reports whether v is an input value with no operands.
func (v *Value) IsLeaf() bool {
	return len(v.operands) == 0
}

// Operands returns the values v was computed from, in operand order.
// The returned slice is a copy.
func (v *Value) Operands() []*Value {
	if len(v.operands) == 0 {
		return nil
	}
	out := make([]*Value, len(v.operands))
	copy(out, v.operands)
	return out
}

// String renders the value and its gradient for debugging.
func (v *Value) String() string {
	return fmt.Sprintf("Value(%v:grad=%v)", v.data, v.grad)
}

// Add returns v + other.
func (v *Value) Add(other Operand) *Value {
	return newResult(ops.AddOp(), v, resolve(other))
}

// Mul returns v * other.
func (v *Value) Mul(other Operand) *Value {
	return newResult(ops.MulOp(), v, resolve(other))
}

// Pow returns v raised to a constant exponent.
//
// The exponent must be a Scalar. Passing a *Value returns an error wrapping
// ErrUnsupportedOperand and allocates nothing.
func (v *Value) Pow(exponent Operand) (*Value, error) {
	p, ok := exponent.(Scalar)
	if !ok {
		return nil, fmt.Errorf("%w: pow exponent must be a constant, got %T", ErrUnsupportedOperand, exponent)
	}
	return newResult(ops.PowOp(float64(p)), v), nil
}

// backwardStep adds this node's contribution into each operand's gradient.
func (v *Value) backwardStep() {
	if len(v.operands) == 0 {
		return
	}
	inputs := make([]float64, len(v.operands))
	for i, operand := range v.operands {
		inputs[i] = operand.data
	}
	for i, g := range v.op.Backward(v.grad, inputs) {
		v.operands[i].grad += g
	}
}
