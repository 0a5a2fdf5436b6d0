package utils

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawPixels paints every point, given as (x, y) image positions, into dst.
func DrawPixels(dst *image.RGBA, pts []image.Point, col color.Color) {
	b := dst.Bounds()
	for _, p := range pts {
		if p.In(b) {
			dst.Set(p.X, p.Y, col)
		}
	}
}

// DrawMarker draws a hollow square of the given radius centred on p.
func DrawMarker(dst *image.RGBA, p image.Point, radius int, col color.Color) {
	if radius < 1 {
		radius = 1
	}
	rect := image.Rect(p.X-radius, p.Y-radius, p.X+radius+1, p.Y+radius+1)
	DrawRect(dst, rect, col)
}

// DrawRect draws a one pixel axis-aligned rectangle outline into dst.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.Set(x, rect.Min.Y, col)
		dst.Set(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.Set(rect.Min.X, y, col)
		dst.Set(rect.Max.X-1, y, col)
	}
}

// DrawLabel writes text with its baseline-left corner at p using the basic
// 7x13 bitmap font.
func DrawLabel(dst *image.RGBA, p image.Point, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(p.X, p.Y),
	}
	d.DrawString(text)
}

// ParseHexColor parses colors like "#RRGGBB" or "RRGGBB". It returns nil for
// malformed input.
func ParseHexColor(s string) color.Color {
	if s == "" {
		return nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return nil
	}
	return color.RGBA{uint8(rv), uint8(gv), uint8(bv), 255} //nolint:gosec // G115: values are two hex digits
}
