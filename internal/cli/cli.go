// Package cli parses scalargrad command-line arguments into a Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("scalargrad", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
scalargrad - Reverse-mode differentiation of scalar expressions.

Usage:
  scalargrad [options] FILE
  scalargrad version

Arguments:
  FILE
    HCL file of attributes, e.g. "a = 3", "f = (a + b) * a", "g = pow(f, 2)".

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", "", "Attribute to differentiate. Defaults to the last attribute in the file.")
	checkFlag := flagSet.Bool("check", false, "Compare gradients against finite differences.")
	epsilonFlag := flagSet.Float64("epsilon", 0, "Finite-difference step for -check (default 1e-6).")
	toleranceFlag := flagSet.Float64("tolerance", 0, "Accepted gradient error for -check (default 1e-4).")
	workersFlag := flagSet.Int("workers", 0, "Goroutines used by -check. 0 uses one per CPU.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No file provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected a single file, got %d arguments", flagSet.NArg())}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := NewConfig(Config{
		Path:      flagSet.Arg(0),
		Root:      *rootFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Check:     *checkFlag,
		Epsilon:   *epsilonFlag,
		Tolerance: *toleranceFlag,
		Workers:   *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
