package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	installRootOnce sync.Once
	installRoot     string
)

// InstallRoot returns the directory database/ and runs/ live under: two levels above
// this package's source directory. Binaries built with -trimpath carry no absolute
// source path, so the executable's directory is used instead. The working directory
// is never consulted.
func InstallRoot() string {
	installRootOnce.Do(func() {
		installRoot = resolveInstallRoot()
	})
	return installRoot
}

func resolveInstallRoot() string {
	if _, file, _, ok := runtime.Caller(0); ok && filepath.IsAbs(file) {
		return filepath.Dir(filepath.Dir(filepath.Dir(file)))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	return string(filepath.Separator)
}

// DefaultDatabasePath returns the reference case database directory under root.
func DefaultDatabasePath(root string) string {
	return filepath.Join(root, databaseDirName)
}

// DefaultRunDirectory returns the run output directory under root.
func DefaultRunDirectory(root string) string {
	return filepath.Join(root, runsDirName)
}
