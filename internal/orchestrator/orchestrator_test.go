package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robokit/msggen/internal/cache"
	"github.com/robokit/msggen/internal/depgraph"
)

// countingWriter records how many times each package was written.
type countingWriter struct {
	mu     sync.Mutex
	writes map[string]int
	failOn string
}

func newCountingWriter() *countingWriter {
	return &countingWriter{writes: make(map[string]int)}
}

func (w *countingWriter) WritePackage(_ context.Context, entry *cache.Entry, _ string) error {
	w.mu.Lock()
	w.writes[entry.Name]++
	w.mu.Unlock()
	if entry.Name == w.failOn {
		return errors.New("write failed")
	}
	return nil
}

func (w *countingWriter) count(pkg string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes[pkg]
}

func testCache(deps map[string][]string) *cache.Cache {
	c := &cache.Cache{Packages: make(map[string]*cache.Entry)}
	for pkg, pkgDeps := range deps {
		entry := &cache.Entry{Name: pkg, LocalDeps: make(map[string]struct{})}
		for _, dep := range pkgDeps {
			entry.LocalDeps[dep] = struct{}{}
		}
		c.Packages[pkg] = entry
	}
	return c
}

func TestBuildAllWritesEveryPackageOnce(t *testing.T) {
	c := testCache(map[string][]string{
		"a": {},
		"b": {"a"},
		"c": {"a", "b"},
		"d": {"a"},
	})
	w := newCountingWriter()

	err := New(c, w).BuildAll(context.Background(), t.TempDir())
	require.NoError(t, err)

	for pkg := range c.Packages {
		assert.Equal(t, 1, w.count(pkg), "package %s", pkg)
	}
}

func TestBuildOneBuildsSubtreeOnly(t *testing.T) {
	c := testCache(map[string][]string{
		"a":         {},
		"b":         {"a"},
		"unrelated": {},
	})
	w := newCountingWriter()

	err := New(c, w).BuildOne(context.Background(), "b", t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, w.count("a"))
	assert.Equal(t, 1, w.count("b"))
	assert.Equal(t, 0, w.count("unrelated"))
}

func TestConcurrentBuildOneSharedDependency(t *testing.T) {
	// b and c share a; one orchestrator instance serves both requests and
	// the shared dependency is written exactly once.
	c := testCache(map[string][]string{
		"a": {},
		"b": {"a"},
		"c": {"a"},
	})
	w := newCountingWriter()
	o := New(c, w)
	outDir := t.TempDir()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pkg := range []string{"b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = o.BuildOne(context.Background(), pkg, outDir, nil)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, w.count("a"))
	assert.Equal(t, 1, w.count("b"))
	assert.Equal(t, 1, w.count("c"))
}

func TestBuildPackageIdempotent(t *testing.T) {
	c := testCache(map[string][]string{"a": {}})
	w := newCountingWriter()
	o := New(c, w)
	outDir := t.TempDir()

	require.NoError(t, o.BuildOne(context.Background(), "a", outDir, nil))
	// Re-building a loaded package performs zero additional writes and
	// raises no error.
	require.NoError(t, o.BuildOne(context.Background(), "a", outDir, nil))
	assert.Equal(t, 1, w.count("a"))
}

func TestBuildOneFilterSkipsDependencies(t *testing.T) {
	c := testCache(map[string][]string{
		"a": {},
		"b": {"a"},
	})
	w := newCountingWriter()

	filter := func(pkg string) bool { return pkg != "a" }
	err := New(c, w).BuildOne(context.Background(), "b", t.TempDir(), filter)
	require.NoError(t, err)

	assert.Equal(t, 0, w.count("a"))
	assert.Equal(t, 1, w.count("b"))
}

func TestBuildAllCyclePropagates(t *testing.T) {
	c := testCache(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})
	w := newCountingWriter()

	err := New(c, w).BuildAll(context.Background(), t.TempDir())
	var cycle *depgraph.CycleError
	require.True(t, errors.As(err, &cycle))
}

func TestBuildOneUnknownPackage(t *testing.T) {
	c := testCache(map[string][]string{"a": {}})
	w := newCountingWriter()

	err := New(c, w).BuildOne(context.Background(), "ghost", t.TempDir(), nil)
	var missing *cache.MissingDependencyError
	require.True(t, errors.As(err, &missing))
}

func TestWriteFailureAbortsBuild(t *testing.T) {
	c := testCache(map[string][]string{
		"a": {},
		"b": {"a"},
	})
	w := newCountingWriter()
	w.failOn = "a"

	err := New(c, w).BuildOne(context.Background(), "b", t.TempDir(), nil)
	require.Error(t, err)
	// The failed dependency aborts the subtree before b is written.
	assert.Equal(t, 0, w.count("b"))
}
