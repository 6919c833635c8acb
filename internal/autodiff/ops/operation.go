// Package ops defines the operation variants recorded on scalar autodiff nodes.
//
// Each node carries an Op describing how it was produced. The Op provides:
//   - Forward pass: the value computed from the operand values
//   - Backward pass: the contribution to add into each operand's gradient,
//     given the node's own gradient
//
// Supported operations:
//   - Leaf: an input value with no operands (backward is a no-op)
//   - Add: addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - Mul: multiplication (d(a*b)/da = b, d(a*b)/db = a)
//   - Pow: power with a constant exponent (d(a^p)/da = p * a^(p-1))
//
// Ops are plain values; Backward dispatches on the kind tag.
package ops

import "fmt"

// Kind tags the operation that produced a node.
type Kind int

// Supported operation kinds.
const (
	Leaf Kind = iota
	Add
	Mul
	Pow
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Add:
		return "add"
	case Mul:
		return "mul"
	case Pow:
		return "pow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is the tagged operation variant stored on a node.
// Only Pow uses the exponent.
type Op struct {
	kind     Kind
	exponent float64
}

// LeafOp returns the operation of an input node.
func LeafOp() Op {
	return Op{kind: Leaf}
}

// Kind returns the operation tag.
func (op Op) Kind() Kind {
	return op.kind
}

// Exponent returns the constant exponent of a Pow operation, 0 otherwise.
func (op Op) Exponent() float64 {
	return op.exponent
}

// Arity returns the number of operands the operation consumes.
func (op Op) Arity() int {
	switch op.kind {
	case Add, Mul:
		return 2
	case Pow:
		return 1
	default:
		return 0
	}
}

// String returns the operation name, including the exponent for Pow.
func (op Op) String() string {
	if op.kind == Pow {
		return fmt.Sprintf("pow(%v)", op.exponent)
	}
	return op.kind.String()
}

// Forward computes the output value from the operand values.
// Panics if len(inputs) does not match Arity.
func (op Op) Forward(inputs ...float64) float64 {
	op.checkArity(len(inputs))

	switch op.kind {
	case Add:
		return addForward(inputs[0], inputs[1])
	case Mul:
		return mulForward(inputs[0], inputs[1])
	case Pow:
		return powForward(inputs[0], op.exponent)
	default:
		panic("ops: Forward called on a leaf")
	}
}

// Backward computes the contribution to each operand's gradient.
//
// outputGrad is the accumulated gradient of the node that owns this Op and
// inputs are the operand values in operand order. The returned slice has one
// entry per operand; callers add (never assign) each entry into the matching
// operand's gradient. A Leaf returns nil.
func (op Op) Backward(outputGrad float64, inputs []float64) []float64 {
	op.checkArity(len(inputs))

	switch op.kind {
	case Add:
		return addBackward(outputGrad)
	case Mul:
		return mulBackward(outputGrad, inputs[0], inputs[1])
	case Pow:
		return powBackward(outputGrad, inputs[0], op.exponent)
	default:
		return nil
	}
}

func (op Op) checkArity(n int) {
	if n != op.Arity() {
		panic(fmt.Sprintf("ops: %s expects %d operands, got %d", op, op.Arity(), n))
	}
}
