package gridmap

import (
	"slices"
	"sort"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// RLEGrid stores weighted labels as runs over padded ids. run i covers
// [starts[i], starts[i+1]) with label values[i]; starts[0] is 0 and adjacent runs always
// have different labels. lookups are a binary search over the run starts.
type RLEGrid struct {
	layout
	starts []da.Index
	values []uint8
}

func NewRLEGrid(width, height int) (*RLEGrid, error) {
	l, err := newLayout(width, height, width+2)
	if err != nil {
		return nil, err
	}
	return &RLEGrid{
		layout: l,
		starts: []da.Index{0},
		values: []uint8{OBSTACLE},
	}, nil
}

// Compress run-length encodes a weighted grid.
func Compress(src *WeightedGrid) *RLEGrid {
	g := &RLEGrid{
		layout: src.layout,
		starts: make([]da.Index, 0, 16),
		values: make([]uint8, 0, 16),
	}
	for id, l := range src.labels {
		if len(g.values) == 0 || g.values[len(g.values)-1] != l {
			g.starts = append(g.starts, da.Index(id))
			g.values = append(g.values, l)
		}
	}
	return g
}

// Decompress expands the runs back into a byte per cell grid.
func (g *RLEGrid) Decompress() *WeightedGrid {
	w := &WeightedGrid{
		layout: g.layout,
		labels: make([]uint8, g.NumPaddedCells()),
	}
	for i := range g.starts {
		end := g.runEnd(i)
		for id := g.starts[i]; id < end; id++ {
			w.labels[id] = g.values[i]
		}
	}
	return w
}

func (g *RLEGrid) Kind() Kind {
	return KIND_RLE
}

func (g *RLEGrid) runEnd(i int) da.Index {
	if i+1 < len(g.starts) {
		return g.starts[i+1]
	}
	return da.Index(g.NumPaddedCells())
}

// findRun returns the index of the run containing id.
func (g *RLEGrid) findRun(id da.Index) int {
	return sort.Search(len(g.starts), func(i int) bool {
		return g.starts[i] > id
	}) - 1
}

func (g *RLEGrid) GetLabel(id da.Index) uint8 {
	if int(id) >= g.NumPaddedCells() {
		return OBSTACLE
	}
	return g.values[g.findRun(id)]
}

func (g *RLEGrid) IsTraversable(id da.Index) bool {
	return g.GetLabel(id) != OBSTACLE
}

// SetLabel splits the run containing id and merges equal neighbours back. O(runs).
func (g *RLEGrid) SetLabel(id da.Index, cost uint8) error {
	if !g.IsLogical(id) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "cell id %d is not a logical cell", id)
	}
	i := g.findRun(id)
	if g.values[i] == cost {
		return nil
	}
	start, end, old := g.starts[i], g.runEnd(i), g.values[i]

	pieceStarts := make([]da.Index, 0, 3)
	pieceValues := make([]uint8, 0, 3)
	if start < id {
		pieceStarts = append(pieceStarts, start)
		pieceValues = append(pieceValues, old)
	}
	pieceStarts = append(pieceStarts, id)
	pieceValues = append(pieceValues, cost)
	if id+1 < end {
		pieceStarts = append(pieceStarts, id+1)
		pieceValues = append(pieceValues, old)
	}

	g.starts = slices.Replace(g.starts, i, i+1, pieceStarts...)
	g.values = slices.Replace(g.values, i, i+1, pieceValues...)
	g.mergeAround(i-1, i+len(pieceStarts))
	return nil
}

// mergeAround removes run boundaries in [lo, hi] whose label equals the previous run's.
func (g *RLEGrid) mergeAround(lo, hi int) {
	if lo < 1 {
		lo = 1
	}
	for j := lo; j <= hi && j < len(g.starts); {
		if g.values[j] == g.values[j-1] {
			g.starts = slices.Delete(g.starts, j, j+1)
			g.values = slices.Delete(g.values, j, j+1)
			hi--
			continue
		}
		j++
	}
}

func (g *RLEGrid) GetNeighbours(id da.Index) Neighbourhood {
	return readNeighbours(g, id)
}

func (g *RLEGrid) ReadRowSegment(id da.Index, dir pkg.Direction) uint64 {
	return ReadRowSegmentScalar(g, id, dir)
}

func (g *RLEGrid) IsUniformCost() bool {
	for _, v := range g.values {
		if v > UNIFORM {
			return false
		}
	}
	return true
}

func (g *RLEGrid) NumRuns() int {
	return len(g.starts)
}
