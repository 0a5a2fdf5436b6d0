package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	for i := range 3 {
		testutil.WriteSquarePNG(t, dir, fmt.Sprintf("img%d.png", i), 8, 8, 1, 1, i+2)
	}

	out, err := executeCommand(t, nil, "batch", dir, "--format", "json", "--workers", "2")
	require.NoError(t, err, out)

	var results []output.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	for i, res := range results {
		n := i + 2
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("img%d.png", i)), res.File)
		assert.Equal(t, 4*n-4, res.Distinct)
	}
}

func TestBatchCommand_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSquarePNG(t, dir, "a.png", 5, 5, 1, 1, 3)
	testutil.WriteSquarePNG(t, dir, "b.png", 5, 5, 0, 0, 0)

	_, err := executeCommand(t, nil, "batch", dir, "--format", "json")
	require.Error(t, err)

	out, err := executeCommand(t, nil, "batch", dir, "--format", "json", "--continue-on-error")
	require.NoError(t, err, out)

	var results []output.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, "no_foreground_pixel", results[1].ErrorType)
}

func TestBatchCommand_PatternsAndStats(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSquarePNG(t, dir, "keep.png", 5, 5, 1, 1, 3)
	testutil.WriteSquarePNG(t, dir, "skip.png", 5, 5, 1, 1, 3)
	outFile := filepath.Join(dir, "results.csv")

	out, err := executeCommand(t, nil, "batch", dir, "--exclude", "skip*", "--format", "csv",
		"--output", outFile, "--stats")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Results written to "+outFile)
	assert.Contains(t, out, "Total images: 1")

	data := readFile(t, outFile)
	assert.Contains(t, data, "keep.png")
	assert.NotContains(t, data, "skip.png")
}

func TestBatchCommand_NoImages(t *testing.T) {
	_, err := executeCommand(t, nil, "batch", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files found")
}
