// Package config handles library paths and user preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	LibraryDir  = ".bipcite"
	ConfigFile  = "config.yml"
	RecordsFile = "records.jsonl"
	CacheDir    = "cache"
	DBFile      = "records.db"
)

// LibraryPath returns the path to the .bipcite directory from a root path.
func LibraryPath(root string) string {
	return filepath.Join(root, LibraryDir)
}

// ConfigPath returns the path to the library's config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDir, ConfigFile)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, LibraryDir, RecordsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir)
}

// DBPath returns the path to records.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir, DBFile)
}

// IsLibrary checks if the given path contains a bipcite library.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from the given path to find a bipcite library.
// Returns the library root path or an error if not found.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a bipcite library (no %s directory found)", LibraryDir)
		}
		abs = parent
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
