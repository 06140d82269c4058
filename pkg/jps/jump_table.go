package jps

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/gridnav/pkg"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"golang.org/x/sync/errgroup"
)

const (
	deadEndFlag  uint16 = 1 << 15
	maxJumpSteps        = int(deadEndFlag - 1)
)

// JumpTable stores, for every logical cell and direction, the number of steps to the nearest jump
// point found without a goal. when the walk dead-ends the entry holds the number of legal steps
// before the obstacle with the dead-end flag set.
//
// entries[d][y*width+x]: 15 bit step count | dead-end flag in the top bit. 16 bytes per cell.
type JumpTable struct {
	width   int
	height  int
	entries [8][]uint16
}

func newJumpTable(width, height int) *JumpTable {
	jt := &JumpTable{width: width, height: height}
	for i := range jt.entries {
		jt.entries[i] = make([]uint16, width*height)
	}
	return jt
}

func (jt *JumpTable) Width() int {
	return jt.width
}

func (jt *JumpTable) Height() int {
	return jt.height
}

// Get returns the step count and dead-end flag for (x, y) in direction d. cells outside the map
// are dead ends of length 0.
func (jt *JumpTable) Get(d pkg.Direction, x, y int) (int, bool) {
	di := pkg.DirectionIndex(d)
	if di < 0 || x < 0 || y < 0 || x >= jt.width || y >= jt.height {
		return 0, true
	}
	e := jt.entries[di][y*jt.width+x]
	return int(e &^ deadEndFlag), e&deadEndFlag != 0
}

// Precompute builds the jump table of grid in linear time. every entry follows from the entry
// of the next cell on the same ray, so each direction is one sweep starting at the far end of
// the map: straight directions first, then diagonals, which read the straight tables at the
// cell they step into.
func Precompute(ctx context.Context, grid gridmap.Grid) (*JumpTable, error) {
	if grid.Width() > maxJumpSteps || grid.Height() > maxJumpSteps {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"map %dx%d is too large for a jump table (max side %d)", grid.Width(), grid.Height(), maxJumpSteps)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jt := newJumpTable(grid.Width(), grid.Height())
	for _, dirs := range [2][4]pkg.Direction{
		{pkg.NORTH, pkg.SOUTH, pkg.EAST, pkg.WEST},
		{pkg.NORTHEAST, pkg.NORTHWEST, pkg.SOUTHEAST, pkg.SOUTHWEST},
	} {
		g, gctx := errgroup.WithContext(ctx)
		for _, d := range dirs {
			d := d
			g.Go(func() error {
				return jt.sweep(gctx, grid, d)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return jt, nil
}

// sweep fills the entries of direction d. with n the cell one step from c in direction d:
//   - the step c -> n is illegal: c is a dead end of length 0.
//   - n is a jump point: 1 step. straight, n has a forced neighbour; diagonal, one of the
//     straight components from n reaches a jump point (its entry is not a dead end).
//   - otherwise the entry of n plus one step, keeping its dead-end flag.
//
// cells are visited so that n is always filled before c.
func (jt *JumpTable) sweep(ctx context.Context, grid gridmap.Grid, d pkg.Direction) error {
	dx, dy := d.Delta()
	h, v := d.Components()
	table := jt.entries[pkg.DirectionIndex(d)]

	x0, xEnd, xStep := 0, jt.width, 1
	if dx > 0 {
		x0, xEnd, xStep = jt.width-1, -1, -1
	}
	y0, yEnd, yStep := 0, jt.height, 1
	if dy > 0 {
		y0, yEnd, yStep = jt.height-1, -1, -1
	}

	for y := y0; y != yEnd; y += yStep {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		for x := x0; x != xEnd; x += xStep {
			i := y*jt.width + x
			if !grid.GetNeighbours(grid.ToPaddedID(x, y)).CanStep(d) {
				table[i] = deadEndFlag
				continue
			}
			nx, ny := x+dx, y+dy
			if jt.isJumpPoint(grid, d, h, v, nx, ny) {
				table[i] = 1
				continue
			}
			table[i] = table[ny*jt.width+nx] + 1
		}
	}
	return nil
}

func (jt *JumpTable) isJumpPoint(grid gridmap.Grid, d, h, v pkg.Direction, x, y int) bool {
	if !d.IsDiagonal() {
		return ForcedCardinal(d, grid.GetNeighbours(grid.ToPaddedID(x, y))) != 0
	}
	_, hDead := jt.Get(h, x, y)
	_, vDead := jt.Get(v, x, y)
	return !hDead || !vDead
}

// WriteJumpTable stores the table bzip2 compressed:
//
//	<width> <height>
//	8 lines, one per direction in pkg.Directions order, width*height entries each
func (jt *JumpTable) WriteJumpTable(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", jt.width, jt.height)
	for di := range jt.entries {
		for i, e := range jt.entries[di] {
			w.WriteString(strconv.FormatUint(uint64(e), 10))
			if i < len(jt.entries[di])-1 {
				w.WriteByte(' ')
			}
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func ReadJumpTable(filename string) (*JumpTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrFormat, "cannot open jump table %s", filename)
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrFormat, "missing jump table header")
	}
	ff := util.Fields(line)
	if len(ff) != 2 {
		return nil, util.WrapErrorf(nil, util.ErrFormat, "invalid jump table header %q", line)
	}
	width, err := strconv.Atoi(ff[0])
	if err != nil || width <= 0 {
		return nil, util.WrapErrorf(err, util.ErrFormat, "invalid jump table width %q", ff[0])
	}
	height, err := strconv.Atoi(ff[1])
	if err != nil || height <= 0 {
		return nil, util.WrapErrorf(err, util.ErrFormat, "invalid jump table height %q", ff[1])
	}

	jt := newJumpTable(width, height)
	for di := range jt.entries {
		line, err = util.ReadLine(br)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrFormat, "missing entries for direction %v", pkg.Directions[di])
		}
		ff = util.Fields(line)
		if len(ff) != width*height {
			return nil, util.WrapErrorf(nil, util.ErrFormat, "direction %v has %d entries, expected %d",
				pkg.Directions[di], len(ff), width*height)
		}
		for i, tok := range ff {
			v, err := strconv.ParseUint(tok, 10, 16)
			if err != nil {
				return nil, util.WrapErrorf(err, util.ErrFormat, "invalid jump table entry %q", tok)
			}
			jt.entries[di][i] = uint16(v)
		}
	}
	return jt, nil
}
