// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates the given directory and any missing parents. A path that
// already exists as a directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// FilesByExtension returns the definition files directly inside dir whose
// names end with the given extension, keyed by base name without the
// extension. A missing dir yields an empty map rather than an error, since
// interface packages routinely omit one or more definition kinds.
func FilesByExtension(dir string, extension string) (map[string]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), extension)
		files[name] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}

// ListDirs returns the names of all immediate subdirectories of root.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

