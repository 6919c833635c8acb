// Package main provides the scalargrad CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/cli"
	"github.com/born-ml/scalargrad/internal/expr"
	"github.com/born-ml/scalargrad/internal/gradcheck"
)

const version = "v0.1.0"

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run evaluates the file named in args, differentiates its root attribute
// and prints every attribute the root depends on.
func run(outW, logW io.Writer, args []string) error {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(outW, "scalargrad %s\n", version)
		return nil
	}

	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, logW)

	src, err := os.ReadFile(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to read expression file: %w", err)
	}

	prog, err := expr.Parse(src, cfg.Path, expr.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", cfg.Path, err)
	}

	root := cfg.Root
	if root == "" {
		root = prog.Last()
	}

	ev, err := prog.Eval(root, nil)
	if err != nil {
		return fmt.Errorf("failed to evaluate %q: %w", root, err)
	}
	ev.Root.Backward()
	logger.Info("Backward pass complete.", "root", root, "nodes", autodiff.NewTape(ev.Root).Len())

	for _, name := range ev.Names() {
		fmt.Fprintf(outW, "%s = %s\n", name, ev.Values[name])
	}

	if cfg.Check {
		return check(outW, logger, prog, ev, root, cfg.GradCheck())
	}
	return nil
}

// check runs a gradient check over the inputs the root depends on.
func check(outW io.Writer, logger *slog.Logger, prog *expr.Program, ev *expr.Evaluation, root string, gc gradcheck.Config) error {
	var (
		names []string
		at    []float64
	)
	for _, name := range prog.Inputs() {
		if _, used := ev.Values[name]; !used {
			continue
		}
		x, _ := prog.Constant(name)
		names = append(names, name)
		at = append(at, x)
	}
	if len(names) == 0 {
		fmt.Fprintln(outW, "gradient check: no inputs")
		return nil
	}

	f := func(inputs []*autodiff.Value) (*autodiff.Value, error) {
		overrides := make(map[string]*autodiff.Value, len(inputs))
		for i, in := range inputs {
			overrides[names[i]] = in
		}
		out, err := prog.Eval(root, overrides)
		if err != nil {
			return nil, err
		}
		return out.Root, nil
	}

	logger.Debug("Running gradient check.", "inputs", len(names), "epsilon", gc.Epsilon, "tolerance", gc.Tolerance)
	results, err := gradcheck.Check(f, at, gc)
	fmt.Fprintf(outW, "gradient check (epsilon=%g, tolerance=%g):\n", gc.Epsilon, gc.Tolerance)
	for _, r := range results {
		fmt.Fprintf(outW, "  %s: %s\n", names[r.Index], r)
	}
	if errors.Is(err, gradcheck.ErrMismatch) {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	return err
}
