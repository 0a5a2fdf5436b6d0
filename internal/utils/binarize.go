package utils

import (
	"errors"
	"image"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/disintegration/imaging"
)

// BinarizeOptions controls the conversion of an image into a binary grid.
type BinarizeOptions struct {
	// Threshold is the luminance a pixel must exceed to count as foreground.
	// Zero keeps every non-black pixel.
	Threshold uint8
	// Invert selects dark objects on a light background.
	Invert bool
}

// Binarize converts img into a contour grid. Pixels are converted to
// luminance; a pixel is foreground when its luminance is above the threshold
// (or at most the threshold when Invert is set). Fully transparent pixels are
// always background.
func Binarize(img image.Image, opts BinarizeOptions) (contour.Grid, error) {
	if img == nil {
		return contour.Grid{}, &ImageProcessingError{Operation: "binarize", Err: errors.New("input image is nil")}
	}

	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	g := contour.NewGrid(b.Dy(), b.Dx())
	for y := range b.Dy() {
		row := gray.Pix[y*gray.Stride:]
		for x := range b.Dx() {
			lum, alpha := row[x*4], row[x*4+3]
			if alpha == 0 {
				continue
			}
			fg := lum > opts.Threshold
			if opts.Invert {
				fg = !fg
			}
			if fg {
				g.Cells[y*g.Width+x] = 1
			}
		}
	}
	return g, nil
}

// GridImage renders a grid as a black and white image, foreground in white.
func GridImage(g contour.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Cells {
		if v != 0 {
			img.Pix[(i/g.Width)*img.Stride+i%g.Width] = 0xff
		}
	}
	return img
}
