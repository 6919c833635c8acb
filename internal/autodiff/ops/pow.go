package ops

import "math"

// PowOp returns the operation for output = a ^ p with a constant exponent p.
//
// Backward pass:
//   - d(a^p)/da = p * a^(p-1), so grad_a += p * a^(p-1) * outputGrad
//
// The exponent is not a node, so no gradient flows to it.
func PowOp(p float64) Op {
	return Op{kind: Pow, exponent: p}
}

func powForward(a, p float64) float64 {
	return math.Pow(a, p)
}

func powBackward(outputGrad, a, p float64) []float64 {
	return []float64{p * math.Pow(a, p-1) * outputGrad}
}
