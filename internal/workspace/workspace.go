package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// BaseDirName is the per-user directory provcheck keeps its files in.
const BaseDirName = ".provenance"

// ConfigFileName is the optional config overlay picked up when no explicit
// -config flag is given.
const ConfigFileName = "config.yml"

// Dir returns the per-user workspace path without creating it.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, BaseDirName), nil
}

// DiscoverConfig reports the workspace config file path when one exists.
func DiscoverConfig() (string, bool) {
	dir, err := Dir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
