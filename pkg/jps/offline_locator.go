package jps

import (
	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// OfflineLocator answers jumps from a precomputed JumpTable. the table is built without a goal,
// so the goal is clipped in at query time:
//   - straight: a goal on the ray no further than the stored distance is returned instead.
//   - diagonal: the only diagonal cell that can see the goal along a straight component is the
//     one at min(|dx|, |dy|) steps. it becomes a jump point when the table entry of that
//     component reaches the goal.
type OfflineLocator struct {
	grid  gridmap.Grid
	table *JumpTable
}

func NewOfflineLocator(grid gridmap.Grid, table *JumpTable) (*OfflineLocator, error) {
	if table == nil {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "nil jump table")
	}
	if table.Width() != grid.Width() || table.Height() != grid.Height() {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"jump table is %dx%d but map is %dx%d", table.Width(), table.Height(), grid.Width(), grid.Height())
	}
	return &OfflineLocator{grid: grid, table: table}, nil
}

func (l *OfflineLocator) GetTable() *JumpTable {
	return l.table
}

func (l *OfflineLocator) Jump(d pkg.Direction, from, goal da.Index) (da.Index, float64) {
	if !l.grid.IsLogical(from) {
		return da.INVALID_ID, 0
	}
	x, y := l.grid.ToXY(from)
	gx, gy := noGoal, noGoal
	if goal != da.INVALID_ID && l.grid.IsLogical(goal) {
		gx, gy = l.grid.ToXY(goal)
	}

	var steps int
	if d.IsDiagonal() {
		steps = l.jumpDiagonal(d, x, y, gx, gy)
	} else {
		steps = l.jumpCardinal(d, x, y, gx, gy)
	}
	if steps == 0 {
		return da.INVALID_ID, 0
	}
	dx, dy := d.Delta()
	return l.grid.ToPaddedID(x+dx*steps, y+dy*steps), float64(steps) * d.StepCost()
}

func (l *OfflineLocator) jumpCardinal(d pkg.Direction, x, y, gx, gy int) int {
	k, deadEnd := l.table.Get(d, x, y)
	if kg := rayDistance(d, x, y, gx, gy); kg > 0 && kg <= k {
		return kg
	}
	if deadEnd {
		return 0
	}
	return k
}

func (l *OfflineLocator) jumpDiagonal(d pkg.Direction, x, y, gx, gy int) int {
	k, deadEnd := l.table.Get(d, x, y)
	if gx != noGoal {
		dx, dy := d.Delta()
		ax, ay := (gx-x)*dx, (gy-y)*dy
		if ax > 0 && ay > 0 {
			i := util.Min(ax, ay)
			if i <= k {
				if ax == ay {
					return i
				}
				if i < k || deadEnd {
					mx, my := x+dx*i, y+dy*i
					h, v := d.Components()
					c, rest := v, ay-i
					if ax > ay {
						c, rest = h, ax-i
					}
					if run, _ := l.table.Get(c, mx, my); run >= rest {
						return i
					}
				}
			}
		}
	}
	if deadEnd {
		return 0
	}
	return k
}

// rayDistance returns the number of steps from (x, y) to (gx, gy) along cardinal d, or 0 when
// the goal is not on that ray.
func rayDistance(d pkg.Direction, x, y, gx, gy int) int {
	if gx == noGoal {
		return 0
	}
	dx, dy := d.Delta()
	switch {
	case dy == 0 && gy == y && (gx-x)*dx > 0:
		return (gx - x) * dx
	case dx == 0 && gx == x && (gy-y)*dy > 0:
		return (gy - y) * dy
	default:
		return 0
	}
}
