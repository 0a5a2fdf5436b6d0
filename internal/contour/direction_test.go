package contour

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection_OffsetsAreClockwiseFromNorth(t *testing.T) {
	expected := []Point{
		{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
		{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	}
	for i, want := range expected {
		d := Direction(i)
		assert.Equal(t, want, d.Offset(), "offset of %s", d)
	}
}

func TestDirection_OffsetsAreUniqueUnitSteps(t *testing.T) {
	seen := make(map[Point]bool)
	for d := North; d <= NorthWest; d++ {
		off := d.Offset()
		assert.False(t, seen[off], "duplicate offset %v", off)
		seen[off] = true
		assert.LessOrEqual(t, max(abs(off.Row), abs(off.Col)), 1)
		assert.NotEqual(t, Point{}, off)
	}
	assert.Len(t, seen, 8)
}

func TestDirection_Continuation(t *testing.T) {
	expected := map[Direction]Direction{
		North:     NorthWest,
		NorthEast: NorthWest,
		East:      NorthEast,
		SouthEast: NorthEast,
		South:     SouthEast,
		SouthWest: SouthEast,
		West:      SouthWest,
		NorthWest: SouthWest,
	}
	for found, want := range expected {
		assert.Equal(t, want, found.Continuation(), "continuation of %s", found)
	}
}

// Each cardinal direction shares its continuation with the diagonal that
// follows it, and every continuation is a diagonal.
func TestDirection_ContinuationPairs(t *testing.T) {
	for found := North; found <= NorthWest; found += 2 {
		assert.Equal(t, found.Continuation(), found.Next().Continuation())
		assert.Equal(t, 1, int(found.Continuation())%2, "continuation of %s must be diagonal", found)
	}
}

func TestDirection_NextWraps(t *testing.T) {
	assert.Equal(t, NorthEast, North.Next())
	assert.Equal(t, North, NorthWest.Next())
	assert.Equal(t, East, Direction(9).Next())
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "N", North.String())
	assert.Equal(t, "SE", SouthEast.String())
	assert.Equal(t, "NW", NorthWest.String())
	assert.Equal(t, "Direction(?)", Direction(12).String())
	assert.False(t, Direction(-1).Valid())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
