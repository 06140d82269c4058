package gridmap

import (
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// NewGrid creates an all obstacle grid of the given kind.
func NewGrid(kind Kind, width, height int) (Grid, error) {
	return newMutableGrid(kind, width, height)
}

func newMutableGrid(kind Kind, width, height int) (mutableGrid, error) {
	var (
		g   mutableGrid
		err error
	)
	switch kind {
	case KIND_BITPACKED:
		g, err = NewBitpackedGrid(width, height)
	case KIND_WEIGHTED:
		g, err = NewWeightedGrid(width, height)
	case KIND_RLE:
		g, err = NewRLEGrid(width, height)
	default:
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown map kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// BuildMap builds a grid from row-major logical cell costs (0 = obstacle). bit-packed grids
// collapse every non zero cost to 1.
func BuildMap(kind Kind, width, height int, cells []uint8) (Grid, error) {
	if width <= 0 || height <= 0 || len(cells) != width*height {
		return nil, util.WrapErrorf(nil, util.ErrFormat, "expected %dx%d cells, got %d", width, height, len(cells))
	}

	if kind == KIND_RLE {
		w, err := BuildMap(KIND_WEIGHTED, width, height, cells)
		if err != nil {
			return nil, err
		}
		return Compress(w.(*WeightedGrid)), nil
	}

	g, err := newMutableGrid(kind, width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cost := cells[y*width+x]
			if cost == OBSTACLE {
				continue
			}
			if err := g.SetLabel(g.ToPaddedID(x, y), cost); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// BuildMapFromRows builds a grid from ascii rows using the map file character classes.
func BuildMapFromRows(kind Kind, rows []string) (Grid, error) {
	if len(rows) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrFormat, "empty map")
	}
	width := len(rows[0])
	cells := make([]uint8, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, util.WrapErrorf(nil, util.ErrFormat, "row %d has width %d, expected %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			cost, ok := labelOf(row[x], kind)
			if !ok {
				return nil, util.WrapErrorf(nil, util.ErrFormat, "unknown terrain %q at (%d,%d)", row[x], x, y)
			}
			cells = append(cells, cost)
		}
	}
	return BuildMap(kind, width, len(rows), cells)
}

// labelOf maps a map file character to a cell cost.
func labelOf(c byte, kind Kind) (uint8, bool) {
	switch {
	case c == '.' || c == 'G':
		return UNIFORM, true
	case c >= '1' && c <= '9':
		if kind == KIND_BITPACKED {
			return UNIFORM, true
		}
		return c - '0', true
	case c == '@' || c == 'O' || c == 'T' || c == 'W' || c == 'S':
		return OBSTACLE, true
	default:
		return OBSTACLE, false
	}
}

// charOf is the inverse of labelOf.
func charOf(cost uint8) byte {
	switch {
	case cost == OBSTACLE:
		return '@'
	case cost == UNIFORM:
		return '.'
	case cost >= 9:
		return '9'
	default:
		return '0' + cost
	}
}
