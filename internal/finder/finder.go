// Package finder scans configured search paths for robot interface packages
// and builds the raw file index consumed by the package cache.
//
// The expected layout below each search path is the conventional share tree:
//
//	<root>/<pkg>/msg/*.msg
//	<root>/<pkg>/srv/*.srv
//	<root>/<pkg>/action/*.action
//
// Earlier search paths shadow later ones per package, matching overlay
// workspace semantics.
package finder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/robokit/msggen/internal/ctxlog"
	"github.com/robokit/msggen/internal/fsutil"
)

// PackageFiles lists the definition files of one package, keyed by
// definition name (file base name without extension).
type PackageFiles struct {
	Messages map[string]string
	Services map[string]string
	Actions  map[string]string
}

// empty reports whether the package contains no definitions at all.
func (p PackageFiles) empty() bool {
	return len(p.Messages) == 0 && len(p.Services) == 0 && len(p.Actions) == 0
}

// Index maps package name to its definition files.
type Index map[string]PackageFiles

// FindPackages walks every search path and returns the package index.
// Directories without any definition files are not packages and are skipped,
// as are search paths that do not exist (overlay paths are routinely absent).
func FindPackages(ctx context.Context, searchPaths []string) (Index, error) {
	logger := ctxlog.FromContext(ctx)
	index := make(Index)

	for _, root := range searchPaths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logger.Debug("Search path does not exist, skipping.", "path", root)
			continue
		}

		dirs, err := fsutil.ListDirs(root)
		if err != nil {
			return nil, err
		}

		for _, pkg := range dirs {
			if _, ok := index[pkg]; ok {
				logger.Debug("Package shadowed by earlier search path.", "package", pkg, "path", root)
				continue
			}

			files, err := scanPackage(root, pkg)
			if err != nil {
				return nil, err
			}
			if files.empty() {
				continue
			}

			logger.Debug("Discovered package.",
				"package", pkg,
				"messages", len(files.Messages),
				"services", len(files.Services),
				"actions", len(files.Actions),
			)
			index[pkg] = files
		}
	}

	logger.Info("Package index built.", "package_count", len(index))
	return index, nil
}

// scanPackage collects the definition files of a single package directory.
func scanPackage(root, pkg string) (PackageFiles, error) {
	dir := filepath.Join(root, pkg)

	messages, err := fsutil.FilesByExtension(filepath.Join(dir, "msg"), ".msg")
	if err != nil {
		return PackageFiles{}, err
	}
	services, err := fsutil.FilesByExtension(filepath.Join(dir, "srv"), ".srv")
	if err != nil {
		return PackageFiles{}, err
	}
	actions, err := fsutil.FilesByExtension(filepath.Join(dir, "action"), ".action")
	if err != nil {
		return PackageFiles{}, err
	}

	return PackageFiles{Messages: messages, Services: services, Actions: actions}, nil
}
