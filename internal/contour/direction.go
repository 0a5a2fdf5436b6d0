package contour

// Direction indexes the Moore neighbourhood of a pixel. The values are
// ordered clockwise starting at North, so incrementing a Direction modulo 8
// rotates the probe one step clockwise.
type Direction int

// Neighbour directions in clockwise compass order.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// numDirections is the size of the Moore neighbourhood.
const numDirections = 8

// neighbourOffsets holds the (row, col) delta for every Direction.
var neighbourOffsets = [numDirections]Point{
	North:     {Row: -1, Col: 0},
	NorthEast: {Row: -1, Col: 1},
	East:      {Row: 0, Col: 1},
	SouthEast: {Row: 1, Col: 1},
	South:     {Row: 1, Col: 0},
	SouthWest: {Row: 1, Col: -1},
	West:      {Row: 0, Col: -1},
	NorthWest: {Row: -1, Col: -1},
}

// continuation maps the direction at which the previous step found its
// target to the direction at which the next search begins: one step clockwise
// past the last neighbour the previous step probed as background. Resuming
// there keeps the walk on the outside of the object.
var continuation = [numDirections]Direction{
	North:     NorthWest,
	NorthEast: NorthWest,
	East:      NorthEast,
	SouthEast: NorthEast,
	South:     SouthEast,
	SouthWest: SouthEast,
	West:      SouthWest,
	NorthWest: SouthWest,
}

var directionNames = [numDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Valid reports whether d is one of the eight neighbour directions.
func (d Direction) Valid() bool {
	return d >= North && d <= NorthWest
}

// Offset returns the (row, col) delta of the neighbour in direction d.
func (d Direction) Offset() Point {
	return neighbourOffsets[d.normalize()]
}

// Next returns the direction one step clockwise of d.
func (d Direction) Next() Direction {
	return (d.normalize() + 1) % numDirections
}

// Continuation returns the direction at which the search must resume after a
// neighbour was found in direction d.
func (d Direction) Continuation() Direction {
	return continuation[d.normalize()]
}

func (d Direction) String() string {
	if !d.Valid() {
		return "Direction(?)"
	}
	return directionNames[d]
}

func (d Direction) normalize() Direction {
	return ((d % numDirections) + numDirections) % numDirections
}
