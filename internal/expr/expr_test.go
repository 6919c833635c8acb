package expr_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/expr"
)

const chainSrc = `
a = 3
b = 4
s = a + b
f = s * a
`

func mustParse(t *testing.T, src string) *expr.Program {
	t.Helper()
	p, err := expr.Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	return p
}

func TestParse_Attributes(t *testing.T) {
	p := mustParse(t, chainSrc)

	assert.Equal(t, "test.hcl", p.Filename())
	assert.Equal(t, []string{"a", "b", "s", "f"}, p.Attributes())
	assert.Equal(t, []string{"a", "b"}, p.Inputs())
	assert.Equal(t, "f", p.Last())

	x, ok := p.Constant("b")
	assert.True(t, ok)
	assert.Equal(t, 4.0, x)

	_, ok = p.Constant("f")
	assert.False(t, ok)
}

func TestParse_ConstantExpressions(t *testing.T) {
	p := mustParse(t, "k = -2 * (3 + 1)\nx = k * 2\n")

	x, ok := p.Constant("k")
	require.True(t, ok)
	assert.Equal(t, -8.0, x)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		{"syntax", "a = (1 +", expr.ErrParse},
		{"block", "a = 1\nblk {\n}\n", expr.ErrUnsupportedExpression},
		{"empty", "", expr.ErrEmptyProgram},
		{"string", `a = "three"`, expr.ErrNotANumber},
		{"bool", "a = true", expr.ErrNotANumber},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := expr.Parse([]byte(tc.src), "bad.hcl")
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestEval_Chain(t *testing.T) {
	p := mustParse(t, chainSrc)

	ev, err := p.Eval("f", nil)
	require.NoError(t, err)

	assert.Equal(t, 21.0, ev.Root.Data())
	assert.Equal(t, []string{"a", "b", "s", "f"}, ev.Names())

	ev.Root.Backward()

	assert.Equal(t, 10.0, ev.Values["a"].Grad())
	assert.Equal(t, 3.0, ev.Values["b"].Grad())
	assert.Equal(t, 3.0, ev.Values["s"].Grad())
}

func TestEval_OnlyReachableAttributes(t *testing.T) {
	p := mustParse(t, chainSrc)

	ev, err := p.Eval("s", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "s"}, ev.Names())
	assert.NotContains(t, ev.Values, "f")
}

func TestEval_SharedAttributeIsOneNode(t *testing.T) {
	p := mustParse(t, "x = 5\ny = x * x\n")

	ev, err := p.Eval("y", nil)
	require.NoError(t, err)
	ev.Root.Backward()

	assert.Equal(t, 10.0, ev.Values["x"].Grad())
}

func TestEval_Lowering(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		value float64
		grads map[string]float64
	}{
		{"pow", "a = 2\nf = pow(a, 3)", 8, map[string]float64{"a": 12}},
		{"sub", "a = 5\nb = 2\nf = a - b", 3, map[string]float64{"a": 1, "b": -1}},
		{"div", "a = 6\nb = 2\nf = a / b", 3, map[string]float64{"a": 0.5, "b": -1.5}},
		{"neg", "a = 4\nf = -a * 2", -8, map[string]float64{"a": -2}},
		{"const_exponent_expr", "a = 3\nf = pow(a, 1 + 1)", 9, map[string]float64{"a": 6}},
		{"nested", "a = 3\nb = 4\nf = pow(a + b, 2) * (a - 1)", 98, map[string]float64{"a": 77, "b": 28}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.src)
			ev, err := p.Eval("f", nil)
			require.NoError(t, err)

			assert.InDelta(t, tc.value, ev.Root.Data(), 1e-12)

			ev.Root.Backward()
			for name, want := range tc.grads {
				assert.InDelta(t, want, ev.Values[name].Grad(), 1e-12, name)
			}
		})
	}
}

func TestEval_VariableExponent(t *testing.T) {
	p := mustParse(t, "a = 2\nb = 3\nf = pow(a, b)\n")

	ev, err := p.Eval("f", nil)

	require.ErrorIs(t, err, autodiff.ErrUnsupportedOperand)
	assert.Nil(t, ev)
	assert.Contains(t, err.Error(), `attribute "f"`)
}

func TestEval_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		root string
		err  error
	}{
		{"unknown_root", "a = 1", "z", expr.ErrUnknownAttribute},
		{"unknown_ref", "a = 1\nf = a + q", "f", expr.ErrUnknownAttribute},
		{"self_cycle", "a = a + 1", "a", expr.ErrCycle},
		{"cycle", "a = b * 2\nb = a + 1", "a", expr.ErrCycle},
		{"function", "a = 1\nf = max(a, 2)", "f", expr.ErrUnsupportedExpression},
		{"pow_arity", "a = 1\nf = pow(a)", "f", expr.ErrUnsupportedExpression},
		{"operator", "a = 1\nf = a % 2", "f", expr.ErrUnsupportedExpression},
		{"traversal", "a = 1\nf = a.b", "f", expr.ErrUnsupportedExpression},
		{"conditional", "a = 1\nf = a > 0 ? a : 0", "f", expr.ErrUnsupportedExpression},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParse(t, tc.src)
			_, err := p.Eval(tc.root, nil)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestEval_Overrides(t *testing.T) {
	p := mustParse(t, chainSrc)
	a := autodiff.New(1)
	b := autodiff.New(2)

	ev, err := p.Eval("f", map[string]*autodiff.Value{"a": a, "b": b})
	require.NoError(t, err)

	assert.Equal(t, 3.0, ev.Root.Data())
	assert.Same(t, a, ev.Values["a"])

	ev.Root.Backward()
	assert.Equal(t, 4.0, a.Grad()) // 2a + b
	assert.Equal(t, 1.0, b.Grad())
}

func TestEval_UnreachableOverrideOmitted(t *testing.T) {
	p := mustParse(t, chainSrc)

	ev, err := p.Eval("a", map[string]*autodiff.Value{"b": autodiff.New(9)})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, ev.Names())
}

func TestEval_BadOverrides(t *testing.T) {
	p := mustParse(t, chainSrc)

	_, err := p.Eval("f", map[string]*autodiff.Value{"zz": autodiff.New(1)})
	assert.ErrorIs(t, err, expr.ErrUnknownAttribute)

	_, err = p.Eval("f", map[string]*autodiff.Value{"a": nil})
	assert.ErrorIs(t, err, expr.ErrUnsupportedExpression)
}

func TestEval_IndependentGraphs(t *testing.T) {
	p := mustParse(t, chainSrc)

	first, err := p.Eval("f", nil)
	require.NoError(t, err)
	second, err := p.Eval("f", nil)
	require.NoError(t, err)

	first.Root.Backward()

	assert.NotSame(t, first.Values["a"], second.Values["a"])
	assert.Zero(t, second.Values["a"].Grad())
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := expr.Parse([]byte(chainSrc), "test.hcl", expr.WithLogger(logger))
	require.NoError(t, err)
	_, err = p.Eval("f", nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Expression file parsed.")
	assert.Contains(t, buf.String(), "Expression evaluated.")
}
