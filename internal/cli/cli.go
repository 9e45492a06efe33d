// Package cli parses command-line arguments into an application config.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/robokit/msggen/internal/config"
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

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating the program should exit cleanly (help requested), or an
// ExitError for invalid usage. Precedence: defaults, then the workspace
// file, then flags.
func Parse(ctx context.Context, args []string, output io.Writer) (*config.Config, bool, error) {
	flagSet := pflag.NewFlagSet("msggen", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
msggen - generate JavaScript bindings from robot interface packages.

Usage:
  msggen [options] [SEARCH_PATH...]

Arguments:
  SEARCH_PATH
    Roots scanned for interface packages (<pkg>/msg, <pkg>/srv, <pkg>/action).
    May also come from the workspace file.

Options:
`)
		flagSet.PrintDefaults()
	}

	configPath := flagSet.StringP("config", "c", "", "Path to an HCL workspace file.")
	pkg := flagSet.StringP("package", "p", "", "Build one package and its dependencies instead of the whole tree.")
	outputDir := flagSet.StringP("output", "o", "", "Output directory for generated bindings.")
	workers := flagSet.Int("workers", 0, "Number of concurrent file-write workers.")
	typescript := flagSet.BoolP("typescript", "t", false, "Also emit the consolidated TypeScript declaration surface.")
	logLevel := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	logFormat := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg := config.Default()

	if *configPath != "" {
		if err := config.LoadFile(ctx, cfg, *configPath); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	if paths := flagSet.Args(); len(paths) > 0 {
		cfg.SearchPaths = paths
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	cfg.Package = *pkg
	cfg.TypeScript = *typescript

	if len(cfg.SearchPaths) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return cfg, false, nil
}
