package autodiff

// Tape is the topological order of every node reachable from a root.
//
// Operands always precede the nodes that consume them, and the root is the
// last entry. Walking the tape backwards therefore visits each node only
// after all of its consumers have contributed to its gradient.
//
// Usage:
//
//	tape := NewTape(loss)
//	tape.ZeroGrad()
//	loss.Backward()
type Tape struct {
	nodes []*Value // post-order: operands before consumers
}

// NewTape computes the topological order of the graph rooted at root.
// Each node appears exactly once, even when reachable through several paths.
func NewTape(root *Value) *Tape {
	t := &Tape{
		nodes: make([]*Value, 0, 16),
	}
	if root == nil {
		return t
	}
	visited := make(map[*Value]struct{})
	t.visit(root, visited)
	return t
}

// visit appends v after all of its not yet visited operands.
func (t *Tape) visit(v *Value, visited map[*Value]struct{}) {
	if _, seen := visited[v]; seen {
		return
	}
	visited[v] = struct{}{}
	for _, operand := range v.operands {
		t.visit(operand, visited)
	}
	t.nodes = append(t.nodes, v)
}

// Nodes returns the recorded order. The returned slice is a copy.
func (t *Tape) Nodes() []*Value {
	out := make([]*Value, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of distinct nodes on the tape.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Root returns the node the tape was built from, or nil for an empty tape.
func (t *Tape) Root() *Value {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[len(t.nodes)-1]
}

// Backward applies every node's local backward rule in reverse order.
//
// It does not seed the root gradient; the caller sets it first (see Backward).
func (t *Tape) Backward() {
	for i := len(t.nodes) - 1; i >= 0; i-- {
		t.nodes[i].backwardStep()
	}
}

// ZeroGrad resets the gradient of every node on the tape to 0.
func (t *Tape) ZeroGrad() {
	for _, v := range t.nodes {
		v.grad = 0
	}
}
