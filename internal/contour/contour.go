package contour

import "image"

// Contour is an ordered sequence of boundary pixels in clockwise walk order.
// A traced contour is closed: its last point equals its first.
type Contour []Point

// IsClosed reports whether the contour has at least one point and ends where
// it starts.
func (c Contour) IsClosed() bool {
	return len(c) > 0 && c[0] == c[len(c)-1]
}

// Start returns the first point, or the zero Point for an empty contour.
func (c Contour) Start() Point {
	if len(c) == 0 {
		return Point{}
	}
	return c[0]
}

// Open returns the contour without its closing duplicate point.
func (c Contour) Open() Contour {
	if len(c) > 1 && c.IsClosed() {
		return c[:len(c)-1]
	}
	return c
}

// Distinct returns the number of different pixels visited.
func (c Contour) Distinct() int {
	seen := make(map[Point]struct{}, len(c))
	for _, p := range c {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Bounds returns the smallest rectangle containing every point, with X as
// column and Y as row. The rectangle is half-open like image.Rectangle.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	minR, minC := c[0].Row, c[0].Col
	maxR, maxC := minR, minC
	for _, p := range c[1:] {
		minR = min(minR, p.Row)
		maxR = max(maxR, p.Row)
		minC = min(minC, p.Col)
		maxC = max(maxC, p.Col)
	}
	return image.Rect(minC, minR, maxC+1, maxR+1)
}

// Translate returns a copy of c shifted by (dr, dc).
func (c Contour) Translate(dr, dc int) Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = Point{Row: p.Row + dr, Col: p.Col + dc}
	}
	return out
}
