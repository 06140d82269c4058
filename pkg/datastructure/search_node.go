package datastructure

import "github.com/lintang-b-s/gridnav/pkg"

// SearchNode is the per-query record of a cell. it lives in a NodePool and is only
// meaningful while its searchID equals the pool's current search.
type SearchNode struct {
	id       Index
	parent   Index
	g        float64
	h        float64
	f        float64
	pos      int
	searchID uint32
}

func (n *SearchNode) reset(id Index, searchID uint32) {
	n.id = id
	n.parent = INVALID_ID
	n.g = pkg.INF_WEIGHT
	n.h = 0
	n.f = pkg.INF_WEIGHT
	n.pos = -1
	n.searchID = searchID
}

func (n *SearchNode) GetId() Index {
	return n.id
}

func (n *SearchNode) GetParent() Index {
	return n.parent
}

func (n *SearchNode) SetParent(parent Index) {
	n.parent = parent
}

func (n *SearchNode) GetG() float64 {
	return n.g
}

func (n *SearchNode) GetH() float64 {
	return n.h
}

func (n *SearchNode) GetF() float64 {
	return n.f
}

// Relax sets a new g (and parent) keeping h, f is recomputed.
func (n *SearchNode) Relax(g float64, parent Index) {
	n.g = g
	n.f = g + n.h
	n.parent = parent
}

// Init sets g, h and parent of a freshly generated node.
func (n *SearchNode) Init(g, h float64, parent Index) {
	n.g = g
	n.h = h
	n.f = g + h
	n.parent = parent
}

func (n *SearchNode) GetSearchID() uint32 {
	return n.searchID
}

func (n *SearchNode) GetRank() float64 {
	return n.f
}

func (n *SearchNode) GetTieBreak() float64 {
	return n.g
}

func (n *SearchNode) SetRank(rank float64) {
	n.f = rank
}

func (n *SearchNode) SetPos(i int) {
	n.pos = i
}

func (n *SearchNode) GetPos() int {
	return n.pos
}
