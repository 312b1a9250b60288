// Package testutil provides fixtures, contexts and a fake Jira server for
// tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadFixtureString loads a fixture file as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	data := LoadFixture(t, path)

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}

	return result
}

// MarshalJSON encodes v, failing the test on error.
func MarshalJSON(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %T: %v", v, err)
	}
	return string(data)
}

// TempFile creates a temporary file with the given content.
// Returns the file path. File is automatically cleaned up when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to create temp file %s: %v", name, err)
	}

	return path
}
