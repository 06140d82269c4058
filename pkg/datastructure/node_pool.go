package datastructure

const (
	nodeBlockShift = 10
	nodeBlockSize  = 1 << nodeBlockShift
	nodeBlockMask  = nodeBlockSize - 1
)

// NodePool is an id-indexed arena of SearchNodes. blocks of 1024 nodes are allocated the
// first time one of their ids is generated and kept for every later search, so a search
// never allocates once the touched region of the map is warm.
//
// nodes are never cleared between searches: a node belongs to the current search only when
// its searchID matches the pool's, everything else is treated as ungenerated.
type NodePool struct {
	blocks   [][]SearchNode
	numNodes int
	searchID uint32
}

func NewNodePool(numNodes int) *NodePool {
	numBlocks := (numNodes + nodeBlockSize - 1) >> nodeBlockShift
	return &NodePool{
		blocks:   make([][]SearchNode, numBlocks),
		numNodes: numNodes,
		searchID: 0,
	}
}

// NewSearch starts a new search and returns its stamp. every node generated before is invalidated.
func (p *NodePool) NewSearch() uint32 {
	p.searchID++
	if p.searchID == 0 {
		// stamp wrapped around, old stamps could collide with new ones.
		for _, block := range p.blocks {
			for i := range block {
				block[i].searchID = 0
			}
		}
		p.searchID = 1
	}
	return p.searchID
}

func (p *NodePool) GetSearchID() uint32 {
	return p.searchID
}

func (p *NodePool) NumNodes() int {
	return p.numNodes
}

// Generate returns the node for id in the current search, resetting it the first time it is
// generated in this search. returns nil when id is outside the pool.
func (p *NodePool) Generate(id Index) *SearchNode {
	if int(id) >= p.numNodes {
		return nil
	}
	blockId := id >> nodeBlockShift
	block := p.blocks[blockId]
	if block == nil {
		block = make([]SearchNode, nodeBlockSize)
		p.blocks[blockId] = block
	}
	n := &block[id&nodeBlockMask]
	if n.searchID != p.searchID {
		n.reset(id, p.searchID)
	}
	return n
}

// Get returns the node for id only if it was generated in the current search.
func (p *NodePool) Get(id Index) *SearchNode {
	if int(id) >= p.numNodes {
		return nil
	}
	block := p.blocks[id>>nodeBlockShift]
	if block == nil {
		return nil
	}
	n := &block[id&nodeBlockMask]
	if n.searchID != p.searchID {
		return nil
	}
	return n
}

func (p *NodePool) IsGenerated(id Index) bool {
	return p.Get(id) != nil
}

// NumAllocatedBlocks is the number of arena blocks allocated so far.
func (p *NodePool) NumAllocatedBlocks() int {
	count := 0
	for _, block := range p.blocks {
		if block != nil {
			count++
		}
	}
	return count
}
