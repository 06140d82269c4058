package gridmap

import (
	"math/bits"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

const (
	wordBits  = 64
	wordShift = 6
	wordMask  = wordBits - 1
)

// BitpackedGrid stores one traversability bit per cell in 64-bit words. the padded width is a
// multiple of 64 with at least one padding column on each side, so a padded id maps straight to
// word id>>6, bit id&63, and every row ends in zero bits that stop any east/west scan.
type BitpackedGrid struct {
	layout
	words       []uint64
	wordsPerRow int
}

func NewBitpackedGrid(width, height int) (*BitpackedGrid, error) {
	wordsPerRow := (width + 2 + wordMask) >> wordShift
	l, err := newLayout(width, height, wordsPerRow*wordBits)
	if err != nil {
		return nil, err
	}
	return &BitpackedGrid{
		layout:      l,
		words:       make([]uint64, wordsPerRow*l.paddedHeight),
		wordsPerRow: wordsPerRow,
	}, nil
}

func (g *BitpackedGrid) Kind() Kind {
	return KIND_BITPACKED
}

func (g *BitpackedGrid) GetLabel(id da.Index) uint8 {
	w := int(id >> wordShift)
	if w >= len(g.words) {
		return OBSTACLE
	}
	return uint8((g.words[w] >> (id & wordMask)) & 1)
}

func (g *BitpackedGrid) IsTraversable(id da.Index) bool {
	return g.GetLabel(id) != OBSTACLE
}

// SetLabel marks a logical cell traversable (cost != 0) or blocked. padding cells cannot be set.
func (g *BitpackedGrid) SetLabel(id da.Index, cost uint8) error {
	if !g.IsLogical(id) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "cell id %d is not a logical cell", id)
	}
	w := id >> wordShift
	mask := uint64(1) << (id & wordMask)
	if cost != OBSTACLE {
		g.words[w] |= mask
	} else {
		g.words[w] &^= mask
	}
	return nil
}

func (g *BitpackedGrid) GetNeighbours(id da.Index) Neighbourhood {
	return readNeighbours(g, id)
}

// ReadRowSegment reads 64 cells east or west of id with at most two word loads.
func (g *BitpackedGrid) ReadRowSegment(id da.Index, dir pkg.Direction) uint64 {
	w := int(id >> wordShift)
	if w >= len(g.words) {
		return 0
	}
	off := uint(id & wordMask)
	switch dir {
	case pkg.EAST:
		seg := g.words[w] >> off
		if off > 0 && (w+1)%g.wordsPerRow != 0 {
			seg |= g.words[w+1] << (wordBits - off)
		}
		return seg
	case pkg.WEST:
		// reversing the word puts cell id at bit 63-off, shifting brings it down to bit 0
		// with its western neighbours above it.
		seg := bits.Reverse64(g.words[w]) >> (wordMask - off)
		if off < wordMask && w%g.wordsPerRow != 0 {
			seg |= bits.Reverse64(g.words[w-1]) << (off + 1)
		}
		return seg
	default:
		return 0
	}
}

func (g *BitpackedGrid) IsUniformCost() bool {
	return true
}

// Transpose returns the grid mirrored over its main diagonal: cell (x, y) becomes (y, x).
// vertical scans on g are horizontal scans on the transpose.
func (g *BitpackedGrid) Transpose() *BitpackedGrid {
	t, err := NewBitpackedGrid(g.height, g.width)
	util.AssertPanic(err == nil, "transpose of a valid grid must be valid")
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.IsTraversable(g.ToPaddedID(x, y)) {
				_ = t.SetLabel(t.ToPaddedID(y, x), UNIFORM)
			}
		}
	}
	return t
}

// NewBitpackedFrom collapses any grid to traversability bits.
func NewBitpackedFrom(src Grid) *BitpackedGrid {
	g, err := NewBitpackedGrid(src.Width(), src.Height())
	util.AssertPanic(err == nil, "bitpacked copy of a valid grid must be valid")
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			if src.IsTraversable(src.ToPaddedID(x, y)) {
				_ = g.SetLabel(g.ToPaddedID(x, y), UNIFORM)
			}
		}
	}
	return g
}
