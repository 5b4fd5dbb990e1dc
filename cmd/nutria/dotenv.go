// ABOUTME: Loads NUTRIA_ settings and other variables from .env files before config is read.
// ABOUTME: Never overrides variables already present in the environment.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// loadDotEnv sets the variables in the .env file at path that are not already
// in the environment and returns how many it set. A missing file sets nothing.
// Lines are KEY=VALUE, optionally prefixed with "export " and optionally
// quoted; # starts a comment line.
func loadDotEnv(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	set := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return set, fmt.Errorf("set %s: %w", key, err)
		}
		set++
	}
	if err := scanner.Err(); err != nil {
		return set, fmt.Errorf("read %s: %w", path, err)
	}
	return set, nil
}

func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	// Values may contain '='.
	key, value, ok = strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

// dotEnvPaths lists the .env files loadDotEnvAuto tries, nearest first: the
// working directory and its parents, then the nutria config directory.
func dotEnvPaths() []string {
	var paths []string
	if wd, err := os.Getwd(); err == nil {
		for dir := wd; ; {
			paths = append(paths, filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if dir, err := defaultConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return paths
}

// loadDotEnvAuto loads every file from dotEnvPaths and returns the ones that
// set at least one variable. Nearer files win since nothing is overridden.
func loadDotEnvAuto() ([]string, error) {
	var loaded []string
	for _, path := range dotEnvPaths() {
		n, err := loadDotEnv(path)
		if err != nil {
			return loaded, err
		}
		if n > 0 {
			loaded = append(loaded, path)
		}
	}
	return loaded, nil
}
