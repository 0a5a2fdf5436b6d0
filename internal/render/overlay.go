// Package render draws traced contours over their source images.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/utils"
	"github.com/disintegration/imaging"
)

// Style controls overlay colours and decorations.
type Style struct {
	ContourColor color.Color
	StartColor   color.Color
	// Label, when non-empty, is written next to the start marker.
	Label string
}

// DefaultStyle returns a red contour with a green start marker.
func DefaultStyle() Style {
	return Style{
		ContourColor: color.RGBA{255, 0, 0, 255},
		StartColor:   color.RGBA{0, 255, 0, 255},
	}
}

// Overlay copies img and paints the contour pixels and the start marker over
// it. Contour coordinates are (row, col) relative to the image origin.
func Overlay(img image.Image, c contour.Contour, style Style) *image.RGBA {
	if img == nil {
		return nil
	}
	def := DefaultStyle()
	if style.ContourColor == nil {
		style.ContourColor = def.ContourColor
	}
	if style.StartColor == nil {
		style.StartColor = def.StartColor
	}

	// imaging.Clone normalises the origin to (0,0), matching the grid.
	src := imaging.Clone(img)
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	if len(c) == 0 {
		return dst
	}

	utils.DrawPixels(dst, ToImagePoints(c), style.ContourColor)

	start := ToImagePoint(c.Start())
	utils.DrawMarker(dst, start, 2, style.StartColor)
	if style.Label != "" {
		utils.DrawLabel(dst, image.Pt(start.X+4, start.Y-4), style.Label, style.StartColor)
	}
	return dst
}

// ToImagePoint converts a (row, col) contour point to an (x, y) image point.
func ToImagePoint(p contour.Point) image.Point {
	return image.Pt(p.Col, p.Row)
}

// ToImagePoints converts a whole contour to image points.
func ToImagePoints(c contour.Contour) []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = ToImagePoint(p)
	}
	return pts
}
