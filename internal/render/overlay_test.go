package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay_PaintsContourAndKeepsBackground(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 30, 30))
	c := contour.Contour{{Row: 5, Col: 5}, {Row: 5, Col: 6}, {Row: 6, Col: 6}, {Row: 6, Col: 5}, {Row: 5, Col: 5}}
	red := color.RGBA{255, 0, 0, 255}

	out := Overlay(img, c, Style{ContourColor: red, StartColor: color.RGBA{0, 0, 255, 255}})
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())

	assert.Equal(t, red, out.RGBAAt(6, 5))
	assert.Equal(t, red, out.RGBAAt(6, 6))
	// Start marker ring around (x=5, y=5) with radius 2.
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, out.RGBAAt(3, 3))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(15, 15))
}

func TestOverlay_DefaultsAndEmpty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))

	out := Overlay(img, nil, Style{})
	require.NotNil(t, out)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(1, 1))

	out = Overlay(img, contour.Contour{{Row: 1, Col: 2}, {Row: 1, Col: 2}}, Style{Label: "start"})
	assert.Equal(t, DefaultStyle().StartColor, out.RGBAAt(0, 0))

	assert.Nil(t, Overlay(nil, nil, Style{}))
}

func TestToImagePoints(t *testing.T) {
	pts := ToImagePoints(contour.Contour{{Row: 1, Col: 7}, {Row: 2, Col: 3}})
	assert.Equal(t, []image.Point{{X: 7, Y: 1}, {X: 3, Y: 2}}, pts)
}
