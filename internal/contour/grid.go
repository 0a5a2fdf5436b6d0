package contour

import (
	"errors"
	"fmt"
	"strings"
)

// Point is a (row, col) pixel coordinate.
type Point struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add returns p shifted by o.
func (p Point) Add(o Point) Point {
	return Point{Row: p.Row + o.Row, Col: p.Col + o.Col}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a binary image stored row-major. Zero cells are background and
// every non-zero cell is foreground.
type Grid struct {
	Height int
	Width  int
	Cells  []int
}

// ErrRaggedRows is returned when the rows handed to GridFromRows differ in length.
var ErrRaggedRows = errors.New("rows have different lengths")

// NewGrid allocates an all-background grid.
func NewGrid(height, width int) Grid {
	if height < 0 {
		height = 0
	}
	if width < 0 {
		width = 0
	}
	return Grid{Height: height, Width: width, Cells: make([]int, height*width)}
}

// GridFromRows builds a grid from a slice of equally sized rows.
func GridFromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Width {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), g.Width, ErrRaggedRows)
		}
		copy(g.Cells[r*g.Width:], row)
	}
	return g, nil
}

// GridFromBools builds a grid where true cells are foreground.
func GridFromBools(rows [][]bool) (Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Width {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), g.Width, ErrRaggedRows)
		}
		for c, v := range row {
			if v {
				g.Cells[r*g.Width+c] = 1
			}
		}
	}
	return g, nil
}

// ParseGrid reads an ASCII picture of a binary image. '#', '1', 'X' and 'x'
// mark foreground, '.' and '0' mark background. Surrounding whitespace on each
// line and blank lines are ignored; every remaining line must have the same
// length.
func ParseGrid(s string) (Grid, error) {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	rows := make([][]int, len(lines))
	for r, line := range lines {
		row := make([]int, len(line))
		for c, ch := range []byte(line) {
			switch ch {
			case '#', '1', 'X', 'x':
				row[c] = 1
			case '.', '0':
			default:
				return Grid{}, fmt.Errorf("line %d col %d: unexpected character %q", r+1, c+1, ch)
			}
		}
		rows[r] = row
	}
	return GridFromRows(rows)
}

// At returns the cell value at (row, col). Coordinates outside the grid read
// as background.
func (g Grid) At(row, col int) int {
	if !g.In(row, col) {
		return 0
	}
	return g.Cells[row*g.Width+col]
}

// Set stores v at (row, col). Out-of-range writes are ignored.
func (g Grid) Set(row, col, v int) {
	if g.In(row, col) {
		g.Cells[row*g.Width+col] = v
	}
}

// In reports whether (row, col) lies inside the grid.
func (g Grid) In(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.Height && col < g.Width
}

// Foreground reports whether the cell at p is non-zero.
func (g Grid) Foreground(p Point) bool {
	return g.At(p.Row, p.Col) != 0
}

// Count returns the number of foreground cells.
func (g Grid) Count() int {
	n := 0
	for _, v := range g.Cells {
		if v != 0 {
			n++
		}
	}
	return n
}

// String renders the grid with '#' for foreground and '.' for background.
func (g Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.Height * (g.Width + 1))
	for r := range g.Height {
		for c := range g.Width {
			if g.Cells[r*g.Width+c] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
