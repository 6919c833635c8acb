package ops

// AddOp returns the operation for output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a += outputGrad
//   - d(a+b)/db = 1, so grad_b += outputGrad
func AddOp() Op {
	return Op{kind: Add}
}

func addForward(a, b float64) float64 {
	return a + b
}

// addBackward passes the output gradient through unchanged to both addends.
func addBackward(outputGrad float64) []float64 {
	return []float64{outputGrad, outputGrad}
}
