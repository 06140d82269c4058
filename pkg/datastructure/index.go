package datastructure

import (
	"fmt"
	"math"
	"strconv"
)

// Index is a padded linear cell id (py*paddedWidth + px).
type Index uint32

const (
	INVALID_ID Index = math.MaxUint32
)

// Coordinate is a logical, 0-indexed cell position. x is the column, y the row.
type Coordinate struct {
	X int
	Y int
}

func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

func (c Coordinate) GetX() int {
	return c.X
}

func (c Coordinate) GetY() int {
	return c.Y
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func ParseIndex(s string) (Index, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(v), nil
}
