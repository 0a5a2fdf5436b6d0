// Package testutil holds helpers shared by the moore test suites: project
// root discovery, contour fixtures and synthetic images.
package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// GetProjectRoot walks up from this file until it finds go.mod.
func GetProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if FileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod above %s", filepath.Dir(filename))
		}
		dir = parent
	}
}

// GetProjectRootValidated is GetProjectRoot plus a check that the CLI
// sources and the fixture directory are where the tests expect them.
func GetProjectRootValidated() (string, error) {
	root, err := GetProjectRoot()
	if err != nil {
		return "", err
	}
	if err := ValidateProjectRoot(root); err != nil {
		return "", fmt.Errorf("invalid project root %s: %w", root, err)
	}
	return root, nil
}

// ValidateProjectRoot reports the first missing entry of the expected layout.
func ValidateProjectRoot(root string) error {
	for _, rel := range []string{"cmd/moore", "internal/contour", "testdata/fixtures"} {
		if !DirExists(filepath.Join(root, rel)) {
			return fmt.Errorf("required directory %s not found in %s", rel, root)
		}
	}
	return nil
}

// GetTestDataDir returns <root>/testdata.
func GetTestDataDir(t *testing.T) string {
	t.Helper()

	root, err := GetProjectRoot()
	require.NoError(t, err, "Failed to find project root")
	return filepath.Join(root, "testdata")
}

// GetFixturesDir returns the directory holding the YAML contour fixtures.
func GetFixturesDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(GetTestDataDir(t), "fixtures")
}

// EnsureDir creates path and its parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
