package search

import (
	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// UnpackPath expands a jump point path into unit steps.
func UnpackPath(path []da.Coordinate) []da.Coordinate {
	if len(path) == 0 {
		return nil
	}
	unpacked := make([]da.Coordinate, 0, len(path))
	unpacked = append(unpacked, path[0])
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		d := pkg.DirectionFromDelta(b.GetX()-a.GetX(), b.GetY()-a.GetY())
		dx, dy := d.Delta()
		x, y := a.GetX(), a.GetY()
		for x != b.GetX() || y != b.GetY() {
			if d == pkg.NONE {
				break
			}
			x, y = x+dx, y+dy
			unpacked = append(unpacked, da.NewCoordinate(x, y))
		}
	}
	return unpacked
}

// ValidatePath checks that every segment of path is a straight or diagonal walk of legal steps
// (no obstacles, no corner cutting) and returns the cost of the walk.
func ValidatePath(grid gridmap.Grid, path []da.Coordinate) (float64, error) {
	if len(path) == 0 {
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "empty path")
	}
	first := path[0]
	if !grid.IsTraversable(grid.ToPaddedID(first.GetX(), first.GetY())) {
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "path starts on blocked cell %v", first)
	}

	cost := 0.0
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		ddx, ddy := b.GetX()-a.GetX(), b.GetY()-a.GetY()
		if ddx == 0 && ddy == 0 {
			return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "repeated point %v at %d", b, i)
		}
		if ddx != 0 && ddy != 0 && util.Abs(ddx) != util.Abs(ddy) {
			return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "segment %v -> %v is not straight or diagonal", a, b)
		}

		d := pkg.DirectionFromDelta(ddx, ddy)
		dx, dy := d.Delta()
		x, y := a.GetX(), a.GetY()
		for x != b.GetX() || y != b.GetY() {
			id := grid.ToPaddedID(x, y)
			if !grid.GetNeighbours(id).CanStep(d) {
				return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "illegal %v step from (%d,%d)", d, x, y)
			}
			next := grid.ToPaddedID(x+dx, y+dy)
			cost += StepCost(d, float64(grid.GetLabel(id)), float64(grid.GetLabel(next)))
			x, y = x+dx, y+dy
		}
	}
	return cost, nil
}
