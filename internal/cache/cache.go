// Package cache builds the immutable per-run package cache: every discovered
// definition file parsed into a spec, action sub-messages synthesized, and
// each package's direct dependency set computed and validated.
//
// A Cache is constructed once per build run and never patched afterwards, so
// concurrent build tasks may read it freely without synchronization.
package cache

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/robokit/msggen/internal/ctxlog"
	"github.com/robokit/msggen/internal/finder"
	"github.com/robokit/msggen/internal/rosidl"
)

// MissingDependencyError reports a reference to a package or definition that
// does not exist in the cache. It is fatal: the workspace is incomplete.
type MissingDependencyError struct {
	// Package is the package whose contents hold the dangling reference.
	Package string
	// Missing is the referenced package that is absent from the cache.
	Missing string
	// Definition optionally names a referenced definition absent from an
	// existing package.
	Definition string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	if e.Definition != "" {
		return fmt.Sprintf("package %s references unknown definition %s/%s", e.Package, e.Missing, e.Definition)
	}
	return fmt.Sprintf("package %s depends on unknown package %s", e.Package, e.Missing)
}

// MsgDef is one message definition inside a package entry. Path is empty for
// messages synthesized from an action.
type MsgDef struct {
	Path string
	Spec *rosidl.MessageSpec
}

// SrvDef is one service definition inside a package entry.
type SrvDef struct {
	Path string
	Spec *rosidl.ServiceSpec
}

// ActDef is one action definition inside a package entry.
type ActDef struct {
	Path string
	Spec *rosidl.ActionSpec
}

// Entry holds every parsed definition of one package plus the union of
// direct package references from all of them, excluding the package itself.
type Entry struct {
	Name     string
	Messages map[string]MsgDef
	Services map[string]SrvDef
	Actions  map[string]ActDef

	LocalDeps map[string]struct{}
}

// MessageNames returns the entry's message names in sorted order. Generated
// output enumerates definitions in this order so that identical cache
// contents always produce identical bytes.
func (e *Entry) MessageNames() []string {
	return slices.Sorted(maps.Keys(e.Messages))
}

// ServiceNames returns the entry's service names in sorted order.
func (e *Entry) ServiceNames() []string {
	return slices.Sorted(maps.Keys(e.Services))
}

// ActionNames returns the entry's action names in sorted order.
func (e *Entry) ActionNames() []string {
	return slices.Sorted(maps.Keys(e.Actions))
}

// Cache is the immutable package table for one build run.
type Cache struct {
	Packages map[string]*Entry
}

// PackageNames returns every cached package name in sorted order.
func (c *Cache) PackageNames() []string {
	return slices.Sorted(maps.Keys(c.Packages))
}

// Lookup returns the entry for a package, or a MissingDependencyError naming
// the requesting package when absent.
func (c *Cache) Lookup(requestedBy, pkg string) (*Entry, error) {
	entry, ok := c.Packages[pkg]
	if !ok {
		return nil, &MissingDependencyError{Package: requestedBy, Missing: pkg}
	}
	return entry, nil
}

// Message resolves a package-qualified message reference, e.g. for the type
// declaration surface.
func (c *Cache) Message(requestedBy, pkg, name string) (*rosidl.MessageSpec, error) {
	entry, err := c.Lookup(requestedBy, pkg)
	if err != nil {
		return nil, err
	}
	def, ok := entry.Messages[name]
	if !ok {
		return nil, &MissingDependencyError{Package: requestedBy, Missing: pkg, Definition: name}
	}
	return def.Spec, nil
}

// Build runs the one-time parse pass over the file index and returns the
// populated cache. Synthesized action sub-messages are added to a package's
// message table only when no on-disk message of the same name exists there;
// on-disk definitions take precedence silently.
func Build(ctx context.Context, index finder.Index) (*Cache, error) {
	logger := ctxlog.FromContext(ctx)
	c := &Cache{Packages: make(map[string]*Entry, len(index))}

	for _, pkg := range slices.Sorted(maps.Keys(index)) {
		entry, err := buildEntry(pkg, index[pkg])
		if err != nil {
			return nil, err
		}
		c.Packages[pkg] = entry
	}

	// Every package referenced anywhere must itself be cached.
	for _, pkg := range c.PackageNames() {
		for dep := range c.Packages[pkg].LocalDeps {
			if _, ok := c.Packages[dep]; !ok {
				return nil, &MissingDependencyError{Package: pkg, Missing: dep}
			}
		}
	}

	logger.Info("Package cache built.", "package_count", len(c.Packages))
	return c, nil
}

// buildEntry parses every definition file of one package.
func buildEntry(pkg string, files finder.PackageFiles) (*Entry, error) {
	entry := &Entry{
		Name:      pkg,
		Messages:  make(map[string]MsgDef),
		Services:  make(map[string]SrvDef),
		Actions:   make(map[string]ActDef),
		LocalDeps: make(map[string]struct{}),
	}

	for _, name := range slices.Sorted(maps.Keys(files.Messages)) {
		path := files.Messages[name]
		spec, err := rosidl.ParseFile(pkg, name, rosidl.KindMessage, path)
		if err != nil {
			return nil, err
		}
		entry.Messages[name] = MsgDef{Path: path, Spec: spec.(*rosidl.MessageSpec)}
		spec.CollectDependencies(entry.LocalDeps)
	}

	for _, name := range slices.Sorted(maps.Keys(files.Services)) {
		path := files.Services[name]
		spec, err := rosidl.ParseFile(pkg, name, rosidl.KindService, path)
		if err != nil {
			return nil, err
		}
		entry.Services[name] = SrvDef{Path: path, Spec: spec.(*rosidl.ServiceSpec)}
		spec.CollectDependencies(entry.LocalDeps)
	}

	for _, name := range slices.Sorted(maps.Keys(files.Actions)) {
		path := files.Actions[name]
		spec, err := rosidl.ParseFile(pkg, name, rosidl.KindAction, path)
		if err != nil {
			return nil, err
		}
		action := spec.(*rosidl.ActionSpec)
		entry.Actions[name] = ActDef{Path: path, Spec: action}
		spec.CollectDependencies(entry.LocalDeps)

		for _, sub := range action.SynthesizedMessages() {
			if _, exists := entry.Messages[sub.Name]; exists {
				continue
			}
			entry.Messages[sub.Name] = MsgDef{Spec: sub}
		}
	}

	// A self-reference is not a dependency. CollectDependencies already
	// filters these; deleting again keeps the invariant local.
	delete(entry.LocalDeps, pkg)

	return entry, nil
}
