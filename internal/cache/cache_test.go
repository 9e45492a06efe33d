package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robokit/msggen/internal/finder"
)

func writeDefinition(t *testing.T, root, pkg, kindDir, file, content string) string {
	t.Helper()
	dir := filepath.Join(root, pkg, kindDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func buildIndex(t *testing.T, root string) finder.Index {
	t.Helper()
	index, err := finder.FindPackages(context.Background(), []string{root})
	require.NoError(t, err)
	return index
}

func TestBuildLocalDeps(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "std_msgs", "msg", "Header.msg", "uint32 seq\nstring frame_id\n")
	writeDefinition(t, root, "geometry_msgs", "msg", "Point.msg", "float64 x\nfloat64 y\nfloat64 z\n")
	writeDefinition(t, root, "geometry_msgs", "msg", "PointStamped.msg", "std_msgs/Header header\nPoint point\n")

	c, err := Build(context.Background(), buildIndex(t, root))
	require.NoError(t, err)

	entry := c.Packages["geometry_msgs"]
	require.NotNil(t, entry)
	assert.Contains(t, entry.LocalDeps, "std_msgs")
	// The unqualified Point reference stays inside the package.
	assert.NotContains(t, entry.LocalDeps, "geometry_msgs")
	assert.Empty(t, c.Packages["std_msgs"].LocalDeps)
}

func TestBuildSynthesizesActionMessages(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "example_actions", "action", "Fibonacci.action",
		"int32 order\n---\nint32[] sequence\n---\nint32[] partial_sequence\n")

	c, err := Build(context.Background(), buildIndex(t, root))
	require.NoError(t, err)

	entry := c.Packages["example_actions"]
	require.NotNil(t, entry)
	require.Contains(t, entry.Messages, "Fibonacci_Goal")
	require.Contains(t, entry.Messages, "Fibonacci_Result")
	require.Contains(t, entry.Messages, "Fibonacci_Feedback")

	// Synthesized messages have no source path.
	assert.Empty(t, entry.Messages["Fibonacci_Goal"].Path)
}

func TestBuildOnDiskMessageSuppressesSynthesized(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "example_actions", "action", "Fibonacci.action",
		"int32 order\n---\nint32[] sequence\n---\nint32[] partial_sequence\n")
	onDisk := writeDefinition(t, root, "example_actions", "msg", "Fibonacci_Goal.msg",
		"int32 order\nbool custom_flag\n")

	c, err := Build(context.Background(), buildIndex(t, root))
	require.NoError(t, err)

	def := c.Packages["example_actions"].Messages["Fibonacci_Goal"]
	assert.Equal(t, onDisk, def.Path)
	require.Len(t, def.Spec.Fields, 2)
}

func TestBuildMissingDependency(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "nav_msgs", "msg", "Odometry.msg", "ghost_msgs/Ghost g\n")

	_, err := Build(context.Background(), buildIndex(t, root))
	require.Error(t, err)

	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "nav_msgs", missing.Package)
	assert.Equal(t, "ghost_msgs", missing.Missing)
}

func TestLookupAndMessage(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "std_msgs", "msg", "Header.msg", "uint32 seq\n")

	c, err := Build(context.Background(), buildIndex(t, root))
	require.NoError(t, err)

	spec, err := c.Message("std_msgs", "std_msgs", "Header")
	require.NoError(t, err)
	assert.Equal(t, "Header", spec.Name)

	_, err = c.Message("std_msgs", "std_msgs", "Nope")
	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Nope", missing.Definition)

	_, err = c.Lookup("std_msgs", "absent_msgs")
	assert.True(t, errors.As(err, &missing))
}

func TestSortedNameHelpers(t *testing.T) {
	entry := &Entry{
		Messages: map[string]MsgDef{"Zeta": {}, "Alpha": {}, "Mid": {}},
		Services: map[string]SrvDef{"B": {}, "A": {}},
		Actions:  map[string]ActDef{"Y": {}, "X": {}},
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, entry.MessageNames())
	assert.Equal(t, []string{"A", "B"}, entry.ServiceNames())
	assert.Equal(t, []string{"X", "Y"}, entry.ActionNames())
}
