package pkg

import "math"

// enum of travel direction. each direction is one bit so that sets of directions
// (natural + forced successors) fit in a single byte.
type Direction uint8

const (
	NONE      Direction = 0
	NORTH     Direction = 1
	SOUTH     Direction = 2
	EAST      Direction = 4
	WEST      Direction = 8
	NORTHEAST Direction = 16
	NORTHWEST Direction = 32
	SOUTHEAST Direction = 64
	SOUTHWEST Direction = 128

	ALL_DIRECTIONS Direction = 255
)

const (
	INF_WEIGHT float64 = 1e15
	SQRT2      float64 = math.Sqrt2
	EPSILON    float64 = 1e-9
)

// Directions in the order they are tried during expansion. cardinals first so that
// successor lists are deterministic.
var Directions = [8]Direction{NORTH, SOUTH, EAST, WEST, NORTHEAST, NORTHWEST, SOUTHEAST, SOUTHWEST}

// DirectionIndex returns 0..7 for a single direction bit and -1 for NONE or a set.
func DirectionIndex(d Direction) int {
	switch d {
	case NORTH:
		return 0
	case SOUTH:
		return 1
	case EAST:
		return 2
	case WEST:
		return 3
	case NORTHEAST:
		return 4
	case NORTHWEST:
		return 5
	case SOUTHEAST:
		return 6
	case SOUTHWEST:
		return 7
	default:
		return -1
	}
}

// Delta returns the unit step (dx, dy) of d. y grows southward.
func (d Direction) Delta() (int, int) {
	switch d {
	case NORTH:
		return 0, -1
	case SOUTH:
		return 0, 1
	case EAST:
		return 1, 0
	case WEST:
		return -1, 0
	case NORTHEAST:
		return 1, -1
	case NORTHWEST:
		return -1, -1
	case SOUTHEAST:
		return 1, 1
	case SOUTHWEST:
		return -1, 1
	default:
		return 0, 0
	}
}

func (d Direction) IsDiagonal() bool {
	return d&(NORTHEAST|NORTHWEST|SOUTHEAST|SOUTHWEST) != 0
}

func (d Direction) IsCardinal() bool {
	return d&(NORTH|SOUTH|EAST|WEST) != 0
}

// Components splits a diagonal into its horizontal and vertical cardinal parts.
func (d Direction) Components() (Direction, Direction) {
	switch d {
	case NORTHEAST:
		return EAST, NORTH
	case NORTHWEST:
		return WEST, NORTH
	case SOUTHEAST:
		return EAST, SOUTH
	case SOUTHWEST:
		return WEST, SOUTH
	default:
		return NONE, NONE
	}
}

// StepCost is the cost of a single step in direction d on a uniform cost grid.
func (d Direction) StepCost() float64 {
	if d.IsDiagonal() {
		return SQRT2
	}
	return 1.0
}

// DirectionFromDelta maps the sign of (dx, dy) to a direction. (0,0) -> NONE.
func DirectionFromDelta(dx, dy int) Direction {
	sx, sy := sign(dx), sign(dy)
	switch {
	case sx == 0 && sy < 0:
		return NORTH
	case sx == 0 && sy > 0:
		return SOUTH
	case sx > 0 && sy == 0:
		return EAST
	case sx < 0 && sy == 0:
		return WEST
	case sx > 0 && sy < 0:
		return NORTHEAST
	case sx < 0 && sy < 0:
		return NORTHWEST
	case sx > 0 && sy > 0:
		return SOUTHEAST
	case sx < 0 && sy > 0:
		return SOUTHWEST
	default:
		return NONE
	}
}

func (d Direction) String() string {
	switch d {
	case NONE:
		return "none"
	case NORTH:
		return "north"
	case SOUTH:
		return "south"
	case EAST:
		return "east"
	case WEST:
		return "west"
	case NORTHEAST:
		return "northeast"
	case NORTHWEST:
		return "northwest"
	case SOUTHEAST:
		return "southeast"
	case SOUTHWEST:
		return "southwest"
	default:
		return "set"
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}
