// Package orchestrator drives the per-run build: it owns the load-state map,
// fans out over dependency subtrees concurrently, and hands fully-resolved
// packages to the writer exactly once.
//
// An Orchestrator instance is single-use. After a failed run, packages stay
// claimed in the loading state; discard the instance rather than reusing it.
package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/robokit/msggen/internal/cache"
	"github.com/robokit/msggen/internal/ctxlog"
	"github.com/robokit/msggen/internal/depgraph"
)

// loadState is the per-package build progress marker. The zero value means
// the package is unclaimed.
type loadState int

const (
	stateLoading loadState = iota + 1
	stateLoaded
)

// PackageWriter emits the generated output for one fully-resolved package.
type PackageWriter interface {
	WritePackage(ctx context.Context, entry *cache.Entry, outputDir string) error
}

// FilterFunc lets a caller drop packages from a computed dependency list,
// e.g. to skip packages another build already claimed. Returning false
// drops the package.
type FilterFunc func(pkg string) bool

// Orchestrator coordinates concurrent, idempotent per-package build tasks
// over one immutable cache. The load-state map is owned by the instance, so
// independent builds (including tests) stay isolated.
type Orchestrator struct {
	cache  *cache.Cache
	writer PackageWriter

	mu     sync.Mutex
	states map[string]loadState
}

// New creates a single-use orchestrator over the given cache.
func New(c *cache.Cache, w PackageWriter) *Orchestrator {
	return &Orchestrator{
		cache:  c,
		writer: w,
		states: make(map[string]loadState),
	}
}

// BuildAll builds every package in the cache. Each package's output depends
// only on its own subtree being resolved, so no ordering across top-level
// packages is needed: all of them are dispatched in maximal parallel and the
// load-state map deduplicates the shared subtrees.
func (o *Orchestrator) BuildAll(ctx context.Context, outputDir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building all packages.", "count", len(o.cache.Packages), "output_dir", outputDir)

	g, ctx := errgroup.WithContext(ctx)
	for _, pkg := range o.cache.PackageNames() {
		g.Go(func() error {
			return o.buildPackage(ctx, pkg, outputDir, true, true, nil)
		})
	}
	return g.Wait()
}

// BuildOne builds one package and its transitive dependencies. The optional
// filter is applied to every computed dependency list across the whole call
// tree, letting a caller spanning several BuildOne calls track which
// packages are already claimed so a shared dependency is built once.
func (o *Orchestrator) BuildOne(ctx context.Context, pkg, outputDir string, filter FilterFunc) error {
	return o.buildPackage(ctx, pkg, outputDir, true, true, filter)
}

// buildPackage is the per-package build task.
//
// The claim in step one must happen synchronously before anything that can
// block: two concurrently-dispatched requests for the same package must
// never both observe it unclaimed.
func (o *Orchestrator) buildPackage(ctx context.Context, pkg, outputDir string, loadDeps, writeFiles bool, filter FilterFunc) error {
	logger := ctxlog.FromContext(ctx)

	// Step 1+2: check-and-set the claim atomically. Loading or loaded means
	// another task in this run owns the package; re-entrant recursion on
	// shared dependencies ends here.
	o.mu.Lock()
	if o.states[pkg] != 0 {
		o.mu.Unlock()
		return nil
	}
	o.states[pkg] = stateLoading
	o.mu.Unlock()

	entry, err := o.cache.Lookup(pkg, pkg)
	if err != nil {
		return err
	}

	// Step 3: resolve and build the dependency subtree first.
	if loadDeps {
		depSet, err := depgraph.FullDependencySet(pkg, o.cache)
		if err != nil {
			return err
		}

		depList := make([]string, 0, len(depSet))
		for dep := range depSet {
			depList = append(depList, dep)
		}
		ordered, err := depgraph.SortPackageList(depList, o.cache)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, dep := range ordered {
			if filter != nil && !filter(dep) {
				logger.Debug("Dependency filtered out.", "package", pkg, "dependency", dep)
				continue
			}
			g.Go(func() error {
				return o.buildPackage(ctx, dep, outputDir, true, true, filter)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// Step 4: emit output and release the claim into its terminal state.
	if writeFiles {
		if err := o.writer.WritePackage(ctx, entry, outputDir); err != nil {
			return err
		}

		o.mu.Lock()
		o.states[pkg] = stateLoaded
		o.mu.Unlock()
		logger.Debug("Package built.", "package", pkg)
	}

	return nil
}
