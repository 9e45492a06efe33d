// Package depgraph provides pure graph functions over an immutable package
// cache: transitive dependency closure with cycle detection, and a
// deterministic build-order sort.
//
// Workspaces hold at most tens of packages per build target, so the sort is
// a simple O(n^2) pairwise pass over memoized closures rather than a general
// topological sort. Cycle detection is result-carrying, never panic-driven,
// so correctness does not depend on unwinding through arbitrary recursion
// depth.
package depgraph

import (
	"fmt"
	"slices"

	"github.com/robokit/msggen/internal/cache"
)

// CycleError reports a dependency cycle. It is fatal: a cycle is a
// structural deadlock that no build order can resolve.
type CycleError struct {
	// Package is the package whose dependency closure reaches back to
	// itself.
	Package string
	// Mutual names the counterpart package when the cycle was caught as a
	// two-node mutual dependency during ordering; it is empty when the
	// cycle was found during closure traversal.
	Mutual string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if e.Mutual != "" {
		return fmt.Sprintf("dependency cycle: packages %s and %s depend on each other", e.Package, e.Mutual)
	}
	return fmt.Sprintf("dependency cycle: package %s transitively depends on itself", e.Package)
}

// FullDependencySet computes the transitive closure of pkg's direct
// dependencies, excluding pkg itself. Revisiting an already-accumulated
// package is cheap and tolerated (diamond dependencies are not errors), but
// the moment traversal reaches an edge whose target is pkg itself the
// closure is cyclic and a CycleError is returned.
//
// Traversal uses an explicit work stack so very deep graphs cannot exhaust
// the goroutine stack.
func FullDependencySet(pkg string, c *cache.Cache) (map[string]struct{}, error) {
	origin, err := c.Lookup(pkg, pkg)
	if err != nil {
		return nil, err
	}

	closure := make(map[string]struct{})
	stack := make([]string, 0, len(origin.LocalDeps))
	for dep := range origin.LocalDeps {
		stack = append(stack, dep)
	}

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if next == pkg {
			return nil, &CycleError{Package: pkg}
		}
		if _, seen := closure[next]; seen {
			continue
		}
		closure[next] = struct{}{}

		entry, err := c.Lookup(pkg, next)
		if err != nil {
			return nil, err
		}
		for dep := range entry.LocalDeps {
			stack = append(stack, dep)
		}
	}

	return closure, nil
}

// SortPackageList permutes list into a valid build order: for any two
// entries, a package always follows every package it transitively depends
// on. Packages with no dependency relation keep their relative input order.
//
// Each package's full dependency set is computed once and memoized, then
// reused across all pairwise comparisons. A pair that depends on each other
// in both directions is a two-node cycle and is reported as a CycleError —
// this check is deliberately redundant with closure traversal, since which
// path catches a mutual dependency first depends on traversal order.
func SortPackageList(list []string, c *cache.Cache) ([]string, error) {
	closures := make(map[string]map[string]struct{}, len(list))
	for _, pkg := range list {
		closure, err := FullDependencySet(pkg, c)
		if err != nil {
			return nil, err
		}
		closures[pkg] = closure
	}

	dependsOn := func(a, b string) bool {
		_, ok := closures[a][b]
		return ok
	}

	ordered := make([]string, 0, len(list))
	for _, pkg := range list {
		insertAt := len(ordered)
		for i, placed := range ordered {
			if !dependsOn(placed, pkg) {
				continue
			}
			if dependsOn(pkg, placed) {
				return nil, &CycleError{Package: pkg, Mutual: placed}
			}
			insertAt = i
			break
		}
		ordered = slices.Insert(ordered, insertAt, pkg)
	}

	return ordered, nil
}
