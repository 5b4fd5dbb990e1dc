// ABOUTME: XDG-based data and config directory resolution for the nutria CLI.
// ABOUTME: The database defaults to the data dir; nutria.yaml and .env are also looked up in the config dir.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultDataDir returns $XDG_DATA_HOME/nutria, or ~/.local/share/nutria.
func defaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// defaultConfigDir returns $XDG_CONFIG_HOME/nutria, or ~/.config/nutria.
func defaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// xdgDir resolves the nutria directory under the base named by env, falling
// back to the home-relative path when env is unset or empty.
func xdgDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "nutria"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, "nutria")...), nil
}
