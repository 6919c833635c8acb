package autodiff

// Operand is anything an operation accepts: a *Value or a Scalar.
type Operand interface {
	lift() *Value
}

// Scalar is a raw number used directly as an operand.
// Add and Mul lift it into a fresh leaf; Pow uses it as the exponent.
type Scalar float64

func (s Scalar) lift() *Value {
	return Lift(float64(s))
}

func (v *Value) lift() *Value {
	return v
}

// resolve converts an operand into a node.
// A nil operand is a programming error.
func resolve(o Operand) *Value {
	if o == nil {
		panic("autodiff: nil operand")
	}
	v := o.lift()
	if v == nil {
		panic("autodiff: nil operand")
	}
	return v
}
