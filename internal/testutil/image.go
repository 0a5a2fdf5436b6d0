package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SquareImage returns a black w x h image with an n x n white square whose
// top-left pixel is (top, left).
func SquareImage(w, h, top, left, n int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := top; y < top+n && y < h; y++ {
		for x := left; x < left+n && x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 0xff})
		}
	}
	return img
}

// ImageFromRows builds a black and white image from '#'/'.' rows.
func ImageFromRows(rows ...string) *image.Gray {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	img := image.NewGray(image.Rect(0, 0, width, len(rows)))
	for y, r := range rows {
		for x, ch := range r {
			if ch == '#' {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}

// SaveImage saves an image as PNG, creating parent directories.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img), "Failed to encode PNG image")
}

// WriteSquarePNG writes a SquareImage to dir/name and returns its path.
func WriteSquarePNG(t *testing.T, dir, name string, w, h, top, left, n int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	SaveImage(t, SquareImage(w, h, top, left, n), path)
	return path
}

// WriteGridFile writes '#'/'.' rows to dir/name and returns its path.
func WriteGridFile(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o600))
	return path
}

// LoadImage decodes the PNG at path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: Test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, err := png.Decode(file)
	require.NoError(t, err, "Failed to decode image")

	return img
}
