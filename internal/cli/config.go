package cli

import (
	"errors"
	"fmt"

	"github.com/born-ml/scalargrad/internal/gradcheck"
	"github.com/born-ml/scalargrad/internal/parallel"
)

// Config holds everything a scalargrad run needs.
type Config struct {
	Path string // expression file
	Root string // attribute to differentiate; empty means the last one

	LogFormat string
	LogLevel  string

	Check     bool    // run a finite-difference gradient check
	Epsilon   float64 // step for the gradient check
	Tolerance float64 // accepted error for the gradient check
	Workers   int     // goroutines for the gradient check, 0 means one per CPU
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}

	def := gradcheck.DefaultConfig()
	if cfg.Epsilon == 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Epsilon < 0 || cfg.Tolerance < 0 {
		return nil, fmt.Errorf("epsilon and tolerance must be positive, got %v and %v", cfg.Epsilon, cfg.Tolerance)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return &cfg, nil
}

// GradCheck returns the gradient checker settings for this run.
func (c *Config) GradCheck() gradcheck.Config {
	gc := gradcheck.Config{
		Epsilon:   c.Epsilon,
		Tolerance: c.Tolerance,
		Parallel:  parallel.DefaultConfig(),
	}
	if c.Workers > 0 {
		gc.Parallel.NumWorkers = c.Workers
		gc.Parallel.Enabled = c.Workers > 1
	}
	return gc
}
