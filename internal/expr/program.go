// Package expr turns HCL attribute files into autodiff graphs.
//
// A file is a flat list of attributes. Attributes whose expressions do not
// reference other attributes are inputs; every other attribute is built from
// the inputs with the operators below:
//
//	a = 3
//	b = 4
//	f = (a + b) * a
//	g = pow(f, 2) / b - a
//
// Addition, multiplication and pow map onto the engine's operations.
// Subtraction, division and negation are lowered onto them:
// x - y = x + y * -1, x / y = x * pow(y, -1), -x = x * -1.
// pow requires a constant exponent; an exponent that references an attribute
// fails with autodiff.ErrUnsupportedOperand.
package expr

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Program is a parsed expression file. It is immutable and safe for
// concurrent Eval calls.
type Program struct {
	filename  string
	attrs     map[string]*hclsyntax.Attribute
	order     []string           // attribute names by source position
	constants map[string]float64 // inputs and their literal values
	logger    *slog.Logger
}

// Option configures Parse.
type Option func(*Program)

// WithLogger sets the logger used for debug records. Passing nil has no effect.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Program) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parse parses src as an HCL attribute file.
func Parse(src []byte, filename string, opts ...Option) (*Program, error) {
	p := &Program{
		filename:  filename,
		constants: make(map[string]float64),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not native HCL syntax", ErrParse, filename)
	}
	if len(body.Blocks) > 0 {
		b := body.Blocks[0]
		return nil, fmt.Errorf("%w: %s: block %q, only attributes are allowed", ErrUnsupportedExpression, b.DefRange(), b.Type)
	}
	if len(body.Attributes) == 0 {
		return nil, ErrEmptyProgram
	}

	p.attrs = body.Attributes
	for name := range body.Attributes {
		p.order = append(p.order, name)
	}
	sort.Slice(p.order, func(i, j int) bool {
		return p.attrs[p.order[i]].SrcRange.Start.Byte < p.attrs[p.order[j]].SrcRange.Start.Byte
	})

	for _, name := range p.order {
		attr := p.attrs[name]
		if !isConstant(attr.Expr) {
			continue
		}
		x, err := constant(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		p.constants[name] = x
	}

	p.logger.Debug("Expression file parsed.",
		"file", filename, "attributes", len(p.order), "inputs", len(p.constants))
	return p, nil
}

// Filename returns the name the program was parsed with.
func (p *Program) Filename() string {
	return p.filename
}

// Attributes returns all attribute names in source order.
func (p *Program) Attributes() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Inputs returns the names of constant attributes in source order.
func (p *Program) Inputs() []string {
	var out []string
	for _, name := range p.order {
		if _, ok := p.constants[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Constant returns the literal value of an input attribute.
func (p *Program) Constant(name string) (float64, bool) {
	x, ok := p.constants[name]
	return x, ok
}

// Last returns the last attribute in source order, the default root.
func (p *Program) Last() string {
	return p.order[len(p.order)-1]
}
