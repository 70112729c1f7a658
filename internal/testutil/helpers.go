package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile writes content to path, creating parent directories as
// needed. Failures abort the test via require.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	CreateDummyFileBytes(t, path, []byte(content))
}

// CreateDummyFileBytes is CreateDummyFile for raw byte content, used where
// fixtures carry BOMs or non-UTF-8 bytes.
func CreateDummyFileBytes(t *testing.T, path string, content []byte) {
	t.Helper()
	fullPath := filepath.Clean(path)
	err := os.MkdirAll(filepath.Dir(fullPath), 0755)
	require.NoError(t, err, "Failed to create directory for dummy file %s", fullPath)
	err = os.WriteFile(fullPath, content, 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at path, creating parents if
// needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	err := os.MkdirAll(filepath.Clean(path), 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", path)
}

// ReadFileBytes reads the file at path, aborting the test on failure.
func ReadFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read file %s", path)
	return data
}

// ReadFileString reads the file at path as a string, aborting the test on
// failure.
func ReadFileString(t *testing.T, path string) string {
	t.Helper()
	return string(ReadFileBytes(t, path))
}
