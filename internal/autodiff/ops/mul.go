package ops

// MulOp returns the operation for output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a += outputGrad * b
//   - d(a*b)/db = a, so grad_b += outputGrad * a
func MulOp() Op {
	return Op{kind: Mul}
}

func mulForward(a, b float64) float64 {
	return a * b
}

func mulBackward(outputGrad, a, b float64) []float64 {
	return []float64{outputGrad * b, outputGrad * a}
}
