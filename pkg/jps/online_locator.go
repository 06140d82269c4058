package jps

import (
	"math/bits"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
)

// OnlineLocator computes jump points per query. it keeps a bit-packed copy of the map and of its
// transpose, so north/south walks are scanned as west/east walks on the transposed rows, 63
// cells per word read.
//
// with bitScan off every walk steps one cell at a time through 3x3 neighbourhood reads; both
// modes return the same jump points.
type OnlineLocator struct {
	grid    gridmap.Grid
	rows    *gridmap.BitpackedGrid
	cols    *gridmap.BitpackedGrid
	bitScan bool
}

func NewOnlineLocator(grid gridmap.Grid, bitScan bool) *OnlineLocator {
	rows, ok := grid.(*gridmap.BitpackedGrid)
	if !ok {
		rows = gridmap.NewBitpackedFrom(grid)
	}
	return &OnlineLocator{
		grid:    grid,
		rows:    rows,
		cols:    rows.Transpose(),
		bitScan: bitScan,
	}
}

func (l *OnlineLocator) GetGrid() gridmap.Grid {
	return l.grid
}

func (l *OnlineLocator) IsBitScan() bool {
	return l.bitScan
}

func (l *OnlineLocator) Jump(d pkg.Direction, from, goal da.Index) (da.Index, float64) {
	if !l.grid.IsLogical(from) {
		return da.INVALID_ID, 0
	}
	x, y := l.grid.ToXY(from)
	gx, gy := noGoal, noGoal
	if goal != da.INVALID_ID && l.grid.IsLogical(goal) {
		gx, gy = l.grid.ToXY(goal)
	}

	steps := l.jumpXY(d, x, y, gx, gy)
	if steps == 0 {
		return da.INVALID_ID, 0
	}
	dx, dy := d.Delta()
	return l.grid.ToPaddedID(x+dx*steps, y+dy*steps), float64(steps) * d.StepCost()
}

// jumpXY returns the number of steps from (x, y) to the next jump point in direction d, or 0
// when there is none.
func (l *OnlineLocator) jumpXY(d pkg.Direction, x, y, gx, gy int) int {
	if d.IsDiagonal() {
		return l.jumpDiagonal(d, x, y, gx, gy)
	}
	if l.bitScan {
		return l.scanCardinal(d, x, y, gx, gy)
	}
	return l.stepCardinal(d, x, y, gx, gy)
}

func (l *OnlineLocator) neighbours(x, y int) gridmap.Neighbourhood {
	return l.rows.GetNeighbours(l.rows.ToPaddedID(x, y))
}

func (l *OnlineLocator) stepCardinal(d pkg.Direction, x, y, gx, gy int) int {
	dx, dy := d.Delta()
	steps := 0
	n := l.neighbours(x, y)
	for {
		if !n.CanStep(d) {
			return 0
		}
		x, y = x+dx, y+dy
		steps++
		if x == gx && y == gy {
			return steps
		}
		n = l.neighbours(x, y)
		if ForcedCardinal(d, n) != 0 {
			return steps
		}
	}
}

func (l *OnlineLocator) jumpDiagonal(d pkg.Direction, x, y, gx, gy int) int {
	dx, dy := d.Delta()
	h, v := d.Components()
	steps := 0
	for {
		if !l.neighbours(x, y).CanStep(d) {
			return 0
		}
		x, y = x+dx, y+dy
		steps++
		if x == gx && y == gy {
			return steps
		}
		if l.jumpXY(h, x, y, gx, gy) != 0 || l.jumpXY(v, x, y, gx, gy) != 0 {
			return steps
		}
	}
}

// scanCardinal maps every straight direction onto an east or west scan: north/south on the map
// are west/east on the transpose.
func (l *OnlineLocator) scanCardinal(d pkg.Direction, x, y, gx, gy int) int {
	switch d {
	case pkg.EAST:
		return scanRow(l.rows, pkg.EAST, x, y, gx, gy)
	case pkg.WEST:
		return scanRow(l.rows, pkg.WEST, x, y, gx, gy)
	case pkg.SOUTH:
		return scanRow(l.cols, pkg.EAST, y, x, gy, gx)
	case pkg.NORTH:
		return scanRow(l.cols, pkg.WEST, y, x, gy, gx)
	default:
		return 0
	}
}

// scanRow walks east or west from (x, y) on a bit-packed grid and returns the steps to the first
// cell that is the goal or has a forced neighbour, or 0 when a blocked cell comes first.
//
// with seg(k) the traversability of the k-th cell of a row segment, a cell k >= 1 on the walk has
// a forced neighbour above it when up(k) is open and up(k-1) is blocked: up &^ (up << 1).
func scanRow(g *gridmap.BitpackedGrid, dir pkg.Direction, x, y, gx, gy int) int {
	goalSteps := -1
	if gy == y {
		if dir == pkg.EAST && gx > x {
			goalSteps = gx - x
		} else if dir == pkg.WEST && gx < x {
			goalSteps = x - gx
		}
	}

	pw := da.Index(g.PaddedWidth())
	id := g.ToPaddedID(x, y)
	steps := 0
	for {
		cur := g.ReadRowSegment(id, dir)
		up := g.ReadRowSegment(id-pw, dir)
		down := g.ReadRowSegment(id+pw, dir)

		forced := (up &^ (up << 1)) | (down &^ (down << 1))
		blocked := ^cur
		stop := (forced | blocked) &^ 1

		if stop != 0 {
			k := bits.TrailingZeros64(stop)
			if goalSteps >= 0 && steps+k > goalSteps {
				return goalSteps
			}
			if blocked&(1<<uint(k)) != 0 {
				return 0
			}
			// a forced cell or the goal itself.
			return steps + k
		}

		if goalSteps >= 0 && steps+63 >= goalSteps {
			return goalSteps
		}
		steps += 63
		if dir == pkg.EAST {
			id += 63
		} else {
			id -= 63
		}
	}
}
