package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRootValidated()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "go.mod"))
}

func TestGetFixturesDir(t *testing.T) {
	assert.True(t, DirExists(GetFixturesDir(t)))
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

func TestValidateProjectRoot(t *testing.T) {
	require.Error(t, ValidateProjectRoot(t.TempDir()))

	root, err := GetProjectRoot()
	require.NoError(t, err)
	require.NoError(t, ValidateProjectRoot(root))
}
