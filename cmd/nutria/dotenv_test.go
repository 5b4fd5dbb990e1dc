// ABOUTME: Tests for the .env loader that reads KEY=VALUE pairs into the process environment.
// ABOUTME: Covers quoting, comments, export prefixes, no-clobber behavior, and the config dir lookup.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// unset clears key for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDotEnvParsesLines(t *testing.T) {
	path := writeTempEnv(t, `# comment
TEST_DOTENV_A=hello

TEST_DOTENV_Q="quoted value"
TEST_DOTENV_S='single quoted'
export TEST_DOTENV_EX=exported
TEST_DOTENV_EQ=a=b=c
not a pair
=novalue
`)
	unset(t, "TEST_DOTENV_A", "TEST_DOTENV_Q", "TEST_DOTENV_S", "TEST_DOTENV_EX", "TEST_DOTENV_EQ")

	n, err := loadDotEnv(path)
	if err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 variables set, got %d", n)
	}

	want := map[string]string{
		"TEST_DOTENV_A":  "hello",
		"TEST_DOTENV_Q":  "quoted value",
		"TEST_DOTENV_S":  "single quoted",
		"TEST_DOTENV_EX": "exported",
		"TEST_DOTENV_EQ": "a=b=c",
	}
	for key, value := range want {
		if got := os.Getenv(key); got != value {
			t.Errorf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestLoadDotEnvDoesNotClobberExisting(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_X=from_file")
	t.Setenv("TEST_DOTENV_X", "already_set")

	n, err := loadDotEnv(path)
	if err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if n != 0 || os.Getenv("TEST_DOTENV_X") != "already_set" {
		t.Errorf("expected existing env var to be preserved, got %q (%d set)", os.Getenv("TEST_DOTENV_X"), n)
	}
}

func TestLoadDotEnvMissingFileIsNoOp(t *testing.T) {
	n, err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil || n != 0 {
		t.Errorf("expected no-op for missing file, got %d, %v", n, err)
	}
}

func TestLoadDotEnvAutoReadsConfigDir(t *testing.T) {
	configHome := t.TempDir()
	dir := filepath.Join(configHome, "nutria")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("NUTRIA_TEST_AUTO=from_xdg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)
	unset(t, "NUTRIA_TEST_AUTO")

	loaded, err := loadDotEnvAuto()
	if err != nil {
		t.Fatalf("loadDotEnvAuto: %v", err)
	}
	if got := os.Getenv("NUTRIA_TEST_AUTO"); got != "from_xdg" {
		t.Errorf("expected NUTRIA_TEST_AUTO=from_xdg, got %q", got)
	}
	found := false
	for _, p := range loaded {
		if p == envFile {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s among loaded files %v", envFile, loaded)
	}
}
