// Package config defines the application configuration model and validation.
// Values come from defaults, an optional HCL workspace file, and CLI flags,
// in that order of precedence.
package config

import (
	"fmt"
)

// Config holds everything a build run needs to know.
type Config struct {
	// SearchPaths are the roots scanned for interface packages.
	SearchPaths []string
	// OutputDir is the root the generated bindings are written under.
	OutputDir string
	// Package selects single-package-plus-dependencies build mode; empty
	// means whole-tree.
	Package string
	// Workers bounds concurrent file writes.
	Workers int
	// TypeScript enables the global type-declaration pass.
	TypeScript bool
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
}

// Default returns the baseline configuration before file and flag overrides.
func Default() *Config {
	return &Config{
		OutputDir: "generated",
		Workers:   10,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks invariants that hold regardless of where values came from.
func (c *Config) Validate() error {
	if len(c.SearchPaths) == 0 {
		return fmt.Errorf("at least one search path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	return nil
}
