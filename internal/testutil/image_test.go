package testutil

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareImage(t *testing.T) {
	img := SquareImage(6, 5, 1, 2, 3)
	assert.Equal(t, image.Rect(0, 0, 6, 5), img.Bounds())
	assert.Equal(t, uint8(0xff), img.GrayAt(2, 1).Y)
	assert.Equal(t, uint8(0xff), img.GrayAt(4, 3).Y)
	assert.Equal(t, uint8(0), img.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), img.GrayAt(5, 3).Y)
}

func TestImageFromRows(t *testing.T) {
	img := ImageFromRows("#.", ".#", "#")
	assert.Equal(t, image.Rect(0, 0, 2, 3), img.Bounds())
	assert.Equal(t, uint8(0xff), img.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), img.GrayAt(1, 2).Y)
}

func TestWriteSquarePNG_RoundTrip(t *testing.T) {
	path := WriteSquarePNG(t, filepath.Join(t.TempDir(), "nested"), "sq.png", 4, 4, 1, 1, 2)
	img := LoadImage(t, path)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestWriteGridFile(t *testing.T) {
	path := WriteGridFile(t, t.TempDir(), "g.txt", "#.", ".#")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#.\n.#\n", string(data))
}
