package gridmap

import (
	"math"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// Kind is the storage strategy of a grid.
type Kind uint8

const (
	KIND_BITPACKED Kind = iota
	KIND_WEIGHTED
	KIND_RLE
)

func (k Kind) String() string {
	switch k {
	case KIND_BITPACKED:
		return "bitpacked"
	case KIND_WEIGHTED:
		return "weighted"
	case KIND_RLE:
		return "rle"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "bitpacked", "uniform":
		return KIND_BITPACKED, nil
	case "weighted":
		return KIND_WEIGHTED, nil
	case "rle":
		return KIND_RLE, nil
	default:
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown map kind %q", s)
	}
}

const (
	OBSTACLE uint8 = 0
	UNIFORM  uint8 = 1
)

// Grid is a padded cell store. every logical cell (x, y) lives at padded (x+1, y+1) and the
// padded border is a permanent obstacle ring, so neighbour reads never need bounds checks.
// ids outside the padded array read as obstacles too.
//
// Grid is the read side only. reads are safe from many goroutines; the concrete grids carry
// SetLabel for builders and must not be written once searches share them.
type Grid interface {
	Kind() Kind
	Width() int
	Height() int
	PaddedWidth() int
	PaddedHeight() int
	NumPaddedCells() int

	// ToPaddedID maps a logical coordinate to its padded id. out-of-range coordinates map to
	// padded id 0, which is always an obstacle.
	ToPaddedID(x, y int) da.Index
	ToXY(id da.Index) (int, int)
	IsLogical(id da.Index) bool

	GetLabel(id da.Index) uint8
	IsTraversable(id da.Index) bool
	GetNeighbours(id da.Index) Neighbourhood

	// ReadRowSegment returns the traversability of up to 64 cells starting at id and walking
	// EAST or WEST: bit k is set when the k-th cell from id is traversable.
	ReadRowSegment(id da.Index, dir pkg.Direction) uint64

	// IsUniformCost reports whether every traversable cell has cost 1.
	IsUniformCost() bool
}

// Neighbourhood is the 3x3 block around a cell. bit (dy+1)*3 + (dx+1) is set when the cell
// at offset (dx, dy) is traversable.
type Neighbourhood uint16

// IsOpen reports whether the neighbour at offset (dx, dy), each in [-1, 1], is traversable.
func (n Neighbourhood) IsOpen(dx, dy int) bool {
	return n&(1<<uint((dy+1)*3+(dx+1))) != 0
}

// CanStep reports whether a single step in direction d out of the centre cell is legal:
// the target is open and, for diagonals, both orthogonal cells are open (no corner cutting).
func (n Neighbourhood) CanStep(d pkg.Direction) bool {
	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		return false
	}
	if !n.IsOpen(dx, dy) {
		return false
	}
	if dx != 0 && dy != 0 {
		return n.IsOpen(dx, 0) && n.IsOpen(0, dy)
	}
	return true
}

// mutableGrid is a grid still being built.
type mutableGrid interface {
	Grid
	SetLabel(id da.Index, cost uint8) error
}

type readOnlyGrid struct {
	Grid
}

// ReadOnly wraps g so that holders of the result cannot reach SetLabel through a type
// assertion.
func ReadOnly(g Grid) Grid {
	if ro, ok := g.(readOnlyGrid); ok {
		return ro
	}
	return readOnlyGrid{Grid: g}
}

// layout holds the padded geometry shared by every storage strategy.
type layout struct {
	width        int
	height       int
	paddedWidth  int
	paddedHeight int
}

func newLayout(width, height, paddedWidth int) (layout, error) {
	if width <= 0 || height <= 0 {
		return layout{}, util.WrapErrorf(nil, util.ErrFormat, "invalid map dimensions %dx%d", width, height)
	}
	l := layout{
		width:        width,
		height:       height,
		paddedWidth:  paddedWidth,
		paddedHeight: height + 2,
	}
	if uint64(l.paddedWidth)*uint64(l.paddedHeight) >= math.MaxUint32 {
		return layout{}, util.WrapErrorf(nil, util.ErrFormat, "map %dx%d is too large", width, height)
	}
	return l, nil
}

func (l *layout) Width() int {
	return l.width
}

func (l *layout) Height() int {
	return l.height
}

func (l *layout) PaddedWidth() int {
	return l.paddedWidth
}

func (l *layout) PaddedHeight() int {
	return l.paddedHeight
}

func (l *layout) NumPaddedCells() int {
	return l.paddedWidth * l.paddedHeight
}

func (l *layout) ToPaddedID(x, y int) da.Index {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0
	}
	return da.Index((y+1)*l.paddedWidth + x + 1)
}

func (l *layout) ToXY(id da.Index) (int, int) {
	return int(id)%l.paddedWidth - 1, int(id)/l.paddedWidth - 1
}

func (l *layout) IsLogical(id da.Index) bool {
	if int(id) >= l.NumPaddedCells() {
		return false
	}
	x, y := l.ToXY(id)
	return x >= 0 && y >= 0 && x < l.width && y < l.height
}

// readNeighbours builds a Neighbourhood through label reads. ids wrap around below zero
// (Index is unsigned) and read as obstacles.
func readNeighbours(g Grid, id da.Index) Neighbourhood {
	pw := da.Index(g.PaddedWidth())
	var n Neighbourhood
	up := id - pw
	down := id + pw
	ids := [9]da.Index{up - 1, up, up + 1, id - 1, id, id + 1, down - 1, down, down + 1}
	for bit, nid := range ids {
		if g.IsTraversable(nid) {
			n |= 1 << uint(bit)
		}
	}
	return n
}

// ReadRowSegmentScalar is the reference implementation of Grid.ReadRowSegment, one label
// read per cell. it stops at the padded row boundary.
func ReadRowSegmentScalar(g Grid, id da.Index, dir pkg.Direction) uint64 {
	if int(id) >= g.NumPaddedCells() {
		return 0
	}
	pw := g.PaddedWidth()
	px := int(id) % pw
	var seg uint64
	for k := 0; k < 64; k++ {
		var cx int
		switch dir {
		case pkg.EAST:
			cx = px + k
		case pkg.WEST:
			cx = px - k
		default:
			return 0
		}
		if cx < 0 || cx >= pw {
			break
		}
		cid := da.Index(int(id) - px + cx)
		if g.IsTraversable(cid) {
			seg |= 1 << uint(k)
		}
	}
	return seg
}
