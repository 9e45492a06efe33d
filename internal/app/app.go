// Package app wires the build pipeline together: index scan, cache build,
// orchestrated generation and the optional global aggregation pass. Each App
// instance carries its own logger and per-run state, so independent builds
// stay isolated.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/robokit/msggen/internal/cache"
	"github.com/robokit/msggen/internal/config"
	"github.com/robokit/msggen/internal/ctxlog"
	"github.com/robokit/msggen/internal/finder"
	"github.com/robokit/msggen/internal/orchestrator"
	"github.com/robokit/msggen/internal/writer"
)

// App encapsulates one build run's dependencies and configuration.
type App struct {
	logger *slog.Logger
	cfg    *config.Config
}

// New constructs an App with an isolated logger writing to logW.
func New(logW io.Writer, cfg *config.Config) *App {
	return &App{
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		cfg:    cfg,
	}
}

// Run executes the full pipeline. Any error — cycle, missing reference,
// filesystem failure — aborts the run; output already written stays on disk.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Build starting.",
		"search_paths", a.cfg.SearchPaths,
		"output_dir", a.cfg.OutputDir,
		"package", a.cfg.Package,
	)

	index, err := finder.FindPackages(ctx, a.cfg.SearchPaths)
	if err != nil {
		return err
	}

	c, err := cache.Build(ctx, index)
	if err != nil {
		return err
	}

	w := writer.New(a.cfg.Workers)
	orch := orchestrator.New(c, w)

	if a.cfg.Package != "" {
		err = orch.BuildOne(ctx, a.cfg.Package, a.cfg.OutputDir, nil)
	} else {
		err = orch.BuildAll(ctx, a.cfg.OutputDir)
	}
	if err != nil {
		return err
	}

	if a.cfg.TypeScript {
		if err := w.WriteGlobal(ctx, c, a.cfg.OutputDir, writer.DefaultManifest); err != nil {
			return err
		}
	}

	a.logger.Info("Build finished.", "packages", len(c.Packages))
	return nil
}
