package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/robokit/msggen/internal/ctxlog"
)

// workspaceBlock mirrors the `workspace` block of a workspace file.
type workspaceBlock struct {
	SearchPaths []string `hcl:"search_paths"`
	OutputDir   string   `hcl:"output_dir,optional"`
	Workers     int      `hcl:"workers,optional"`
}

// logBlock mirrors the `log` block of a workspace file.
type logBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// fileRoot is the full decode target for one workspace file.
type fileRoot struct {
	Workspace *workspaceBlock `hcl:"workspace,block"`
	Log       *logBlock       `hcl:"log,block"`
}

// LoadFile parses an HCL workspace file and merges its values over the given
// config. Expressions in the file are evaluated against an EvalContext that
// exposes the process environment as the `env` map, so search paths can be
// written as "${env.HOME}/ros_ws/install/share".
func LoadFile(ctx context.Context, cfg *Config, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse workspace file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode workspace file %s: %w", path, diags)
	}

	if root.Workspace != nil {
		if len(root.Workspace.SearchPaths) > 0 {
			cfg.SearchPaths = root.Workspace.SearchPaths
		}
		if root.Workspace.OutputDir != "" {
			cfg.OutputDir = root.Workspace.OutputDir
		}
		if root.Workspace.Workers != 0 {
			cfg.Workers = root.Workspace.Workers
		}
	}
	if root.Log != nil {
		if root.Log.Level != "" {
			cfg.LogLevel = root.Log.Level
		}
		if root.Log.Format != "" {
			cfg.LogFormat = root.Log.Format
		}
	}

	logger.Debug("Workspace file loaded.",
		"search_paths", len(cfg.SearchPaths),
		"output_dir", cfg.OutputDir,
	)
	return nil
}

// evalContext builds the expression evaluation context for workspace files.
// The process environment is exposed as the `env` variable.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = cty.StringVal(value)
	}

	vars := map[string]cty.Value{}
	if len(env) > 0 {
		vars["env"] = cty.MapVal(env)
	} else {
		vars["env"] = cty.MapValEmpty(cty.String)
	}

	return &hcl.EvalContext{Variables: vars}
}
