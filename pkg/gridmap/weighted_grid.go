package gridmap

import (
	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// WeightedGrid stores one cost byte per cell with a one cell obstacle border.
type WeightedGrid struct {
	layout
	labels []uint8
}

func NewWeightedGrid(width, height int) (*WeightedGrid, error) {
	l, err := newLayout(width, height, width+2)
	if err != nil {
		return nil, err
	}
	return &WeightedGrid{
		layout: l,
		labels: make([]uint8, l.NumPaddedCells()),
	}, nil
}

func (g *WeightedGrid) Kind() Kind {
	return KIND_WEIGHTED
}

func (g *WeightedGrid) GetLabel(id da.Index) uint8 {
	if int(id) >= len(g.labels) {
		return OBSTACLE
	}
	return g.labels[id]
}

func (g *WeightedGrid) SetLabel(id da.Index, cost uint8) error {
	if !g.IsLogical(id) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "cell id %d is not a logical cell", id)
	}
	g.labels[id] = cost
	return nil
}

func (g *WeightedGrid) IsTraversable(id da.Index) bool {
	return g.GetLabel(id) != OBSTACLE
}

func (g *WeightedGrid) GetNeighbours(id da.Index) Neighbourhood {
	return readNeighbours(g, id)
}

func (g *WeightedGrid) ReadRowSegment(id da.Index, dir pkg.Direction) uint64 {
	return ReadRowSegmentScalar(g, id, dir)
}

func (g *WeightedGrid) IsUniformCost() bool {
	for _, l := range g.labels {
		if l > UNIFORM {
			return false
		}
	}
	return true
}

// Labels exposes the padded label array, read only.
func (g *WeightedGrid) Labels() []uint8 {
	return g.labels
}
