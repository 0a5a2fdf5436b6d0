package contour

// padding is the width of the background ring added around the image.
const padding = 1

// pad returns a copy of g surrounded by one ring of background cells. Cell
// (r, c) of g ends up at (r+1, c+1).
func pad(g Grid) Grid {
	out := NewGrid(g.Height+2*padding, g.Width+2*padding)
	for r := range g.Height {
		src := g.Cells[r*g.Width : (r+1)*g.Width]
		copy(out.Cells[(r+padding)*out.Width+padding:], src)
	}
	return out
}

// locateStart scans the padded grid row by row and returns the first
// foreground cell.
func locateStart(padded Grid) (Point, error) {
	for i, v := range padded.Cells {
		if v != 0 {
			return Point{Row: i / padded.Width, Col: i % padded.Width}, nil
		}
	}
	return Point{}, ErrNoForegroundPixel
}

// nextBoundaryPoint probes the neighbours of current clockwise, beginning at
// start, and returns the first foreground neighbour with the direction it was
// found in. At most one full revolution is probed.
func nextBoundaryPoint(padded Grid, current Point, start Direction) (Point, Direction, error) {
	d := start
	for range numDirections {
		p := current.Add(d.Offset())
		if padded.Foreground(p) {
			return p, d, nil
		}
		d = d.Next()
	}
	return Point{}, start, &IsolatedPixelError{Point: unpadPoint(current)}
}

// closes reports whether stepping to next completes the loop: the walk has
// already come back to the start pixel and is about to repeat its first move.
func closes(points Contour, next Point) bool {
	n := len(points)
	return n >= 2 && next == points[1] && points[n-1] == points[0]
}

func unpadPoint(p Point) Point {
	return Point{Row: p.Row - padding, Col: p.Col - padding}
}

// remap converts padded coordinates back to original image coordinates in place.
func remap(points Contour) Contour {
	for i, p := range points {
		points[i] = unpadPoint(p)
	}
	return points
}
