// Package gradcheck compares gradients computed by Backward against central
// finite differences.
//
// For every input i the checker evaluates f twice with x_i shifted by
// ±Epsilon and estimates df/dx_i = (f(x+h) - f(x-h)) / 2h. Each evaluation
// builds a fresh graph from new leaves, so the numeric side can be spread
// over goroutines without sharing any node.
package gradcheck

import (
	"fmt"
	"math"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/parallel"
)

// Func builds a graph from the given leaves and returns its root.
// It must not retain or share nodes between calls.
type Func func(inputs []*autodiff.Value) (*autodiff.Value, error)

// Config controls the finite-difference check.
type Config struct {
	Epsilon   float64         // Step for central differences.
	Tolerance float64         // Maximum accepted error, absolute or relative.
	Parallel  parallel.Config // Fan-out for numeric evaluations.
}

// DefaultConfig returns defaults suitable for float64 graphs.
func DefaultConfig() Config {
	return Config{
		Epsilon:   1e-6,
		Tolerance: 1e-4,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Result is the comparison for a single input.
type Result struct {
	Index    int
	Analytic float64
	Numeric  float64
	AbsErr   float64
	RelErr   float64
	OK       bool
}

// String renders the result for reports.
func (r Result) String() string {
	status := "ok"
	if !r.OK {
		status = "MISMATCH"
	}
	return fmt.Sprintf("analytic=%.6g numeric=%.6g abs=%.3g rel=%.3g %s",
		r.Analytic, r.Numeric, r.AbsErr, r.RelErr, status)
}

// Check evaluates f at the point at and compares analytic and numeric
// gradients for every input.
//
// The results are returned even when some inputs disagree; in that case the
// error wraps ErrMismatch. Errors returned by f abort the check.
func Check(f Func, at []float64, cfg Config) ([]Result, error) {
	if len(at) == 0 {
		return nil, ErrNoInputs
	}
	if cfg.Epsilon <= 0 || cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: epsilon=%v tolerance=%v", ErrInvalidConfig, cfg.Epsilon, cfg.Tolerance)
	}

	analytic, err := Analytic(f, at)
	if err != nil {
		return nil, err
	}

	numeric := make([]float64, len(at))
	err = parallel.ForErr(len(at), func(i int) error {
		g, err := numericAt(f, at, i, cfg.Epsilon)
		numeric[i] = g
		return err
	}, cfg.Parallel)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(at))
	var bad []int
	for i := range at {
		results[i] = compare(i, analytic[i], numeric[i], cfg.Tolerance)
		if !results[i].OK {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return results, fmt.Errorf("%w: inputs %v", ErrMismatch, bad)
	}
	return results, nil
}

// Analytic builds the graph once at the point at, runs Backward and returns
// the gradient of every input.
func Analytic(f Func, at []float64) ([]float64, error) {
	inputs := leaves(at)
	root, err := eval(f, inputs)
	if err != nil {
		return nil, err
	}
	root.Backward()

	grads := make([]float64, len(inputs))
	for i, in := range inputs {
		grads[i] = in.Grad()
	}
	return grads, nil
}

// numericAt estimates df/dx_i with central differences.
func numericAt(f Func, at []float64, i int, eps float64) (float64, error) {
	shifted := make([]float64, len(at))
	copy(shifted, at)

	shifted[i] = at[i] + eps
	plus, err := eval(f, leaves(shifted))
	if err != nil {
		return 0, fmt.Errorf("input %d: %w", i, err)
	}

	shifted[i] = at[i] - eps
	minus, err := eval(f, leaves(shifted))
	if err != nil {
		return 0, fmt.Errorf("input %d: %w", i, err)
	}

	return (plus.Data() - minus.Data()) / (2 * eps), nil
}

func eval(f Func, inputs []*autodiff.Value) (*autodiff.Value, error) {
	root, err := f(inputs)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrNilRoot
	}
	return root, nil
}

func leaves(at []float64) []*autodiff.Value {
	out := make([]*autodiff.Value, len(at))
	for i, x := range at {
		out[i] = autodiff.New(x)
	}
	return out
}

// compare accepts a gradient when either the absolute or the relative error
// is within tolerance.
func compare(i int, analytic, numeric, tol float64) Result {
	absErr := math.Abs(analytic - numeric)
	scale := math.Max(math.Abs(analytic), math.Abs(numeric))
	relErr := 0.0
	if scale > 0 {
		relErr = absErr / scale
	}
	return Result{
		Index:    i,
		Analytic: analytic,
		Numeric:  numeric,
		AbsErr:   absErr,
		RelErr:   relErr,
		OK:       absErr <= tol || relErr <= tol,
	}
}
