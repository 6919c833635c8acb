// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// scalar values.
//
// Every operation records its operands, so the final result carries the whole
// computation graph. Backward walks that graph once and fills in the gradient
// of the result with respect to every value it depends on.
//
// Example:
//
//	import "github.com/born-ml/scalargrad/autodiff"
//
//	func main() {
//	    a := autodiff.New(3)
//	    b := autodiff.New(4)
//
//	    f := a.Add(b).Mul(a) // f = (a + b) * a
//	    f.Backward()
//
//	    fmt.Println(a.Grad(), b.Grad()) // 10 3
//	}
package autodiff

import (
	"github.com/born-ml/scalargrad/internal/autodiff"
)

// Value is a scalar node in the computation graph.
type Value = autodiff.Value

// Operand is accepted by operations: a *Value or a Scalar.
type Operand = autodiff.Operand

// Scalar is a raw number used as an operand or as a Pow exponent.
type Scalar = autodiff.Scalar

// Tape is the topological order of a graph.
type Tape = autodiff.Tape

// ErrUnsupportedOperand is returned by Pow when the exponent is a Value.
var ErrUnsupportedOperand = autodiff.ErrUnsupportedOperand

// New creates a leaf value.
func New(x float64) *Value {
	return autodiff.New(x)
}

// Lift converts a raw number into a leaf value.
func Lift(x float64) *Value {
	return autodiff.Lift(x)
}

// NewTape computes the topological order of the graph rooted at root.
func NewTape(root *Value) *Tape {
	return autodiff.NewTape(root)
}

// Backward computes the gradient of root with respect to every value it
// depends on. Ancestor gradients accumulate across calls; use ZeroGrad to
// start an independent pass.
//
// Example:
//
//	x := autodiff.New(3)
//	y := x.Mul(x)
//	autodiff.Backward(y)
//	x.Grad() // 6
func Backward(root *Value) {
	autodiff.Backward(root)
}

// ZeroGrad resets the gradient of root and every value it depends on.
func ZeroGrad(root *Value) {
	autodiff.ZeroGrad(root)
}
