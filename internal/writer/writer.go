// Package writer emits generated binding files to disk: per-package message,
// service and action bindings with their index files, and the optional global
// pass producing a cross-package index, a manifest and the TypeScript
// declaration surface.
//
// All enumeration in generated files follows sorted cache key order, never
// write-completion order, so output is byte-identical for identical cache
// contents regardless of scheduling.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/robokit/msggen/internal/cache"
	"github.com/robokit/msggen/internal/ctxlog"
	"github.com/robokit/msggen/internal/fsutil"
	"github.com/robokit/msggen/internal/genjs"
	"github.com/robokit/msggen/internal/gents"
)

// Manifest is the fixed-field package manifest emitted by the global pass.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main"`
	Types   string `json:"types"`
}

// DefaultManifest is the manifest written when the caller does not supply
// one.
var DefaultManifest = Manifest{
	Name:    "msggen-interfaces",
	Version: "0.1.0",
	Main:    "_index.js",
	Types:   "interfaces.d.ts",
}

// Writer emits generated output. Concurrent file writes across the whole
// process share one weighted semaphore sized by the configured worker count,
// bounding open file descriptors on very large workspaces.
type Writer struct {
	fileSlots *semaphore.Weighted
}

// New creates a writer with the given file-write concurrency width.
func New(workers int) *Writer {
	if workers < 1 {
		workers = 1
	}
	return &Writer{fileSlots: semaphore.NewWeighted(int64(workers))}
}

// writeFile acquires a worker slot and writes one file.
func (w *Writer) writeFile(ctx context.Context, path, content string) error {
	if err := w.fileSlots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer w.fileSlots.Release(1)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WritePackage emits every binding and index file for one fully-resolved
// package under outputDir. The directory structure is created first, then
// all binding files are written concurrently, then the index files.
func (w *Writer) WritePackage(ctx context.Context, entry *cache.Entry, outputDir string) error {
	logger := ctxlog.FromContext(ctx)
	pkgDir := filepath.Join(outputDir, entry.Name)
	msgDir := filepath.Join(pkgDir, "msg")
	srvDir := filepath.Join(pkgDir, "srv")
	actDir := filepath.Join(pkgDir, "action")

	hasMessages := len(entry.Messages) > 0
	hasServices := len(entry.Services) > 0
	hasActions := len(entry.Actions) > 0

	if err := fsutil.EnsureDir(pkgDir); err != nil {
		return err
	}
	if hasMessages {
		if err := fsutil.EnsureDir(msgDir); err != nil {
			return err
		}
	}
	if hasServices {
		if err := fsutil.EnsureDir(srvDir); err != nil {
			return err
		}
	}
	if hasActions {
		if err := fsutil.EnsureDir(actDir); err != nil {
			return err
		}
	}

	// The group context is scoped to the binding closures only. Once the
	// group fails it is canceled, and the index writes below still need a
	// live context.
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range entry.MessageNames() {
		spec := entry.Messages[name].Spec
		g.Go(func() error {
			src, err := genjs.Generate(spec)
			if err != nil {
				return err
			}
			return w.writeFile(gctx, filepath.Join(msgDir, name+".js"), src)
		})
	}
	for _, name := range entry.ServiceNames() {
		spec := entry.Services[name].Spec
		g.Go(func() error {
			src, err := genjs.Generate(spec)
			if err != nil {
				return err
			}
			return w.writeFile(gctx, filepath.Join(srvDir, name+".js"), src)
		})
	}
	for _, name := range entry.ActionNames() {
		spec := entry.Actions[name].Spec
		g.Go(func() error {
			src, err := genjs.Generate(spec)
			if err != nil {
				return err
			}
			return w.writeFile(gctx, filepath.Join(actDir, name+".js"), src)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if hasMessages {
		if err := w.writeFile(ctx, filepath.Join(msgDir, "_index.js"), kindIndex(entry.MessageNames())); err != nil {
			return err
		}
	}
	if hasServices {
		if err := w.writeFile(ctx, filepath.Join(srvDir, "_index.js"), kindIndex(entry.ServiceNames())); err != nil {
			return err
		}
	}
	if hasActions {
		if err := w.writeFile(ctx, filepath.Join(actDir, "_index.js"), kindIndex(entry.ActionNames())); err != nil {
			return err
		}
	}
	if err := w.writeFile(ctx, filepath.Join(pkgDir, "_index.js"), packageIndex(hasMessages, hasServices, hasActions)); err != nil {
		return err
	}

	logger.Debug("Package output written.",
		"package", entry.Name,
		"messages", len(entry.Messages),
		"services", len(entry.Services),
		"actions", len(entry.Actions),
	)
	return nil
}

// WriteGlobal runs the optional aggregation pass over the whole cache: the
// cross-package index, the manifest and the TypeScript declaration file.
func (w *Writer) WriteGlobal(ctx context.Context, c *cache.Cache, outputDir string, manifest Manifest) error {
	logger := ctxlog.FromContext(ctx)

	if err := fsutil.EnsureDir(outputDir); err != nil {
		return err
	}

	if err := w.writeFile(ctx, filepath.Join(outputDir, "_index.js"), globalIndex(c)); err != nil {
		return err
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := w.writeFile(ctx, filepath.Join(outputDir, "package.json"), string(manifestJSON)+"\n"); err != nil {
		return err
	}

	declarations, err := gents.Declarations(c)
	if err != nil {
		return err
	}
	if err := w.writeFile(ctx, filepath.Join(outputDir, "interfaces.d.ts"), declarations); err != nil {
		return err
	}

	logger.Info("Global index, manifest and type declarations written.", "output_dir", outputDir)
	return nil
}

// kindIndex enumerates all bindings of one kind in a package.
func kindIndex(names []string) string {
	var b strings.Builder
	b.WriteString("// Generated by msggen. Do not edit.\n'use strict';\n\nmodule.exports = {\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: require('./%s.js'),\n", name, name)
	}
	b.WriteString("};\n")
	return b.String()
}

// packageIndex aggregates a package's per-kind indexes.
func packageIndex(hasMessages, hasServices, hasActions bool) string {
	var b strings.Builder
	b.WriteString("// Generated by msggen. Do not edit.\n'use strict';\n\nmodule.exports = {\n")
	if hasMessages {
		b.WriteString("  msg: require('./msg/_index.js'),\n")
	}
	if hasServices {
		b.WriteString("  srv: require('./srv/_index.js'),\n")
	}
	if hasActions {
		b.WriteString("  action: require('./action/_index.js'),\n")
	}
	b.WriteString("};\n")
	return b.String()
}

// globalIndex enumerates every package in the cache.
func globalIndex(c *cache.Cache) string {
	var b strings.Builder
	b.WriteString("// Generated by msggen. Do not edit.\n'use strict';\n\nmodule.exports = {\n")
	for _, pkg := range c.PackageNames() {
		fmt.Fprintf(&b, "  %s: require('./%s/_index.js'),\n", pkg, pkg)
	}
	b.WriteString("};\n")
	return b.String()
}
