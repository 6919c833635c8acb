package autodiff

// Backward computes d(root)/d(node) for every node reachable from root.
//
// Algorithm:
//  1. Set root's gradient to 1 (a reset, not an accumulation)
//  2. Build the topological order of the graph (operands first)
//  3. Walk it in reverse, adding each node's contribution into its operands
//
// Gradients of ancestors are accumulated, never overwritten. Running Backward
// on two roots that share ancestors sums both passes into the shared nodes;
// call ZeroGrad on a root before an independent pass to start from zero.
//
// Example:
//
//	x := New(3)
//	y := x.Mul(x) // y = x²
//	Backward(y)
//	x.Grad() // 6
func Backward(root *Value) {
	if root == nil {
		panic("autodiff: backward on nil value")
	}
	root.grad = 1
	NewTape(root).Backward()
}

// Backward runs Backward with v as the root.
func (v *Value) Backward() {
	Backward(v)
}

// ZeroGrad resets the gradient of root and every node reachable from it.
func ZeroGrad(root *Value) {
	NewTape(root).ZeroGrad()
}

// ZeroGrad runs ZeroGrad with v as the root.
func (v *Value) ZeroGrad() {
	ZeroGrad(v)
}
