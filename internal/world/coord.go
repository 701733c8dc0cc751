package world

import "fmt"

// Coordinate addresses one cell of a dungeon grid. x+ is east, y+ is south,
// z+ is up.
type Coordinate struct {
	X, Y, Z int
}

// Step returns the neighboring coordinate one move away in dir.
func (c Coordinate) Step(d Direction) Coordinate {
	dx, dy, dz := d.Offset()
	return Coordinate{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("{%d,%d,%d}", c.X, c.Y, c.Z)
}

// MapDimensions sizes a dungeon grid.
type MapDimensions struct {
	Width  int
	Height int
	Layers int
}

// Contains reports whether c lies inside the grid.
func (m MapDimensions) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < m.Width &&
		c.Y >= 0 && c.Y < m.Height &&
		c.Z >= 0 && c.Z < m.Layers
}

// Cells returns the total cell count.
func (m MapDimensions) Cells() int {
	return m.Width * m.Height * m.Layers
}
