package world

import "strings"

// Direction is a bitmask of travel directions. Every direction is a single
// bit so exit policies can be expressed as masks.
type Direction uint16

const (
	North Direction = 1 << iota
	South
	East
	West
	Northeast
	Northwest
	Southeast
	Southwest
	Up
	Down
)

// DirNone is the empty mask.
const DirNone Direction = 0

// CardinalExits masks the four cardinal directions.
const CardinalExits = North | South | East | West

// DiagonalExits masks the four diagonal directions.
const DiagonalExits = Northeast | Northwest | Southeast | Southwest

// DefaultExits is the standard room exit policy: cardinals and diagonals,
// no vertical travel.
const DefaultExits = CardinalExits | DiagonalExits

// AllExits additionally allows up and down.
const AllExits = DefaultExits | Up | Down

// Directions lists every direction in presentation order.
var Directions = []Direction{
	North, Northeast, East, Southeast, South, Southwest, West, Northwest, Up, Down,
}

var directionNames = map[Direction]string{
	North:     "north",
	South:     "south",
	East:      "east",
	West:      "west",
	Northeast: "northeast",
	Northwest: "northwest",
	Southeast: "southeast",
	Southwest: "southwest",
	Up:        "up",
	Down:      "down",
}

var directionAbbrevs = map[Direction]string{
	North:     "n",
	South:     "s",
	East:      "e",
	West:      "w",
	Northeast: "ne",
	Northwest: "nw",
	Southeast: "se",
	Southwest: "sw",
	Up:        "u",
	Down:      "d",
}

// String returns the full lowercase name, or "none" for the empty mask.
func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return "none"
}

// Abbrev returns the short command form ("n", "ne", "u").
func (d Direction) Abbrev() string {
	if a, ok := directionAbbrevs[d]; ok {
		return a
	}
	return ""
}

// ParseDirection matches full or abbreviated names, case-insensitive.
func ParseDirection(s string) (Direction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, n := range directionNames {
		if s == n || s == directionAbbrevs[d] {
			return d, true
		}
	}
	return DirNone, false
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Northeast:
		return Southwest
	case Southwest:
		return Northeast
	case Northwest:
		return Southeast
	case Southeast:
		return Northwest
	case Up:
		return Down
	case Down:
		return Up
	}
	return DirNone
}

// HasNorth reports whether d carries a northward component.
func (d Direction) HasNorth() bool { return d&(North|Northeast|Northwest) != 0 }

// HasSouth reports whether d carries a southward component.
func (d Direction) HasSouth() bool { return d&(South|Southeast|Southwest) != 0 }

// HasEast reports whether d carries an eastward component.
func (d Direction) HasEast() bool { return d&(East|Northeast|Southeast) != 0 }

// HasWest reports whether d carries a westward component.
func (d Direction) HasWest() bool { return d&(West|Northwest|Southwest) != 0 }

// Offset returns the coordinate delta for one step. North is y-1, east is
// x+1, up is z+1.
func (d Direction) Offset() (dx, dy, dz int) {
	if d.HasNorth() {
		dy--
	}
	if d.HasSouth() {
		dy++
	}
	if d.HasEast() {
		dx++
	}
	if d.HasWest() {
		dx--
	}
	if d == Up {
		dz++
	}
	if d == Down {
		dz--
	}
	return
}
