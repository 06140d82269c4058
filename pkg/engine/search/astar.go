package search

import (
	"context"
	"time"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

type Config struct {
	Policy    PolicyKind
	Heuristic HeuristicKind
	// TimeBudget bounds the wall time of one search, 0 means unbounded.
	TimeBudget time.Duration
	HeapArity  int
	BitScan    bool
}

func DefaultConfig() Config {
	return Config{
		Policy:     POLICY_JPS,
		Heuristic:  HEURISTIC_OCTILE,
		TimeBudget: 0,
		HeapArity:  2,
		BitScan:    true,
	}
}

type Problem struct {
	Start da.Coordinate
	Goal  da.Coordinate
}

func NewProblem(sx, sy, gx, gy int) Problem {
	return Problem{Start: da.NewCoordinate(sx, sy), Goal: da.NewCoordinate(gx, gy)}
}

type Stats struct {
	// Expanded counts nodes handed to the expansion policy.
	Expanded int
	// Generated counts nodes pushed to the open list for the first time.
	Generated int
	// Touched counts successors examined, closed ones included.
	Touched int
	Elapsed time.Duration
}

// Solution of one query. when Found is false no path exists and Path is nil.
type Solution struct {
	Found bool
	Cost  float64
	// Path holds the start, every jump point in order, and the goal.
	Path  []da.Coordinate
	Stats Stats
}

// AStar is a single threaded A* search over a grid map. the map and policy are shared, the
// node pool, open list and closed set belong to this searcher and are reused by every query
// through search stamps. an AStar must not be used by two goroutines at once.
type AStar struct {
	grid       gridmap.Grid
	policy     ExpansionPolicy
	heuristic  Heuristic
	timeBudget time.Duration

	pool   *da.NodePool
	open   *da.MinHeap[*da.SearchNode]
	closed *da.StampSet

	successors []Successor
}

func NewAStar(grid gridmap.Grid, policy ExpansionPolicy, cfg Config) (*AStar, error) {
	heuristic, err := NewHeuristic(cfg.Heuristic)
	if err != nil {
		return nil, err
	}
	if cfg.TimeBudget < 0 {
		return nil, util.WrapErrorf(nil, util.ErrInvalidConfig, "negative time budget %v", cfg.TimeBudget)
	}
	return &AStar{
		grid:       grid,
		policy:     policy,
		heuristic:  heuristic,
		timeBudget: cfg.TimeBudget,
		pool:       da.NewNodePool(grid.NumPaddedCells()),
		open:       da.NewdAryHeap[*da.SearchNode](cfg.HeapArity),
		closed:     da.NewStampSet(grid.NumPaddedCells()),
		successors: make([]Successor, 0, 8),
	}, nil
}

func (a *AStar) GetGrid() gridmap.Grid {
	return a.grid
}

func (a *AStar) GetPolicy() ExpansionPolicy {
	return a.policy
}

func (a *AStar) validate(c da.Coordinate) (da.Index, error) {
	x, y := c.GetX(), c.GetY()
	if x < 0 || y < 0 || x >= a.grid.Width() || y >= a.grid.Height() {
		return da.INVALID_ID, util.WrapErrorf(nil, util.ErrInvalidQuery, "%v is outside the %dx%d map",
			c, a.grid.Width(), a.grid.Height())
	}
	id := a.grid.ToPaddedID(x, y)
	if !a.grid.IsTraversable(id) {
		return da.INVALID_ID, util.WrapErrorf(nil, util.ErrInvalidQuery, "%v is an obstacle", c)
	}
	return id, nil
}

func (a *AStar) estimate(id da.Index, gx, gy int) float64 {
	x, y := a.grid.ToXY(id)
	return a.heuristic(x, y, gx, gy)
}

// FindPath runs A* from p.Start to p.Goal. the search stops on the first pop of the goal; closed
// nodes are never reopened. ctx and the time budget are checked once per pop.
func (a *AStar) FindPath(ctx context.Context, p Problem) (*Solution, error) {
	startTime := time.Now()

	s, err := a.validate(p.Start)
	if err != nil {
		return nil, err
	}
	t, err := a.validate(p.Goal)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if a.timeBudget > 0 {
		deadline = startTime.Add(a.timeBudget)
	}

	a.pool.NewSearch()
	a.open.Clear()
	a.closed.Reset()

	gx, gy := p.Goal.GetX(), p.Goal.GetY()
	stats := Stats{}

	startNode := a.pool.Generate(s)
	startNode.Init(0, a.estimate(s, gx, gy), da.INVALID_ID)
	a.open.Insert(startNode)
	stats.Generated++

	for !a.open.IsEmpty() {
		if util.StopConcurrentOperation(ctx) {
			return nil, util.WrapErrorf(ctx.Err(), util.ErrSearchCancelled, "search %v -> %v cancelled after %d expansions",
				p.Start, p.Goal, stats.Expanded)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, util.WrapErrorf(nil, util.ErrTimeBudgetExceeded, "search %v -> %v exceeded %v after %d expansions",
				p.Start, p.Goal, a.timeBudget, stats.Expanded)
		}

		cur, err := a.open.ExtractMin()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternal, "open list")
		}
		curID := cur.GetId()

		if curID == t {
			path, err := a.extractPath(cur)
			if err != nil {
				return nil, err
			}
			stats.Elapsed = time.Since(startTime)
			return &Solution{
				Found: true,
				Cost:  cur.GetG(),
				Path:  path,
				Stats: stats,
			}, nil
		}

		a.closed.Add(curID)
		stats.Expanded++

		a.successors = a.policy.Expand(curID, cur.GetParent(), t, a.successors[:0])
		for _, succ := range a.successors {
			stats.Touched++
			if a.closed.Contains(succ.ID) {
				continue
			}

			newG := cur.GetG() + succ.Cost
			if newG >= pkg.INF_WEIGHT {
				continue
			}

			next := a.pool.Get(succ.ID)
			if next == nil {
				next = a.pool.Generate(succ.ID)
				if next == nil {
					return nil, util.WrapErrorf(nil, util.ErrInternal, "successor %d outside the node pool", succ.ID)
				}
				next.Init(newG, a.estimate(succ.ID, gx, gy), curID)
				a.open.Insert(next)
				stats.Generated++
				continue
			}

			if newG < next.GetG() {
				next.Relax(newG, curID)
				if err := a.open.DecreaseKey(next, next.GetF()); err != nil {
					return nil, util.WrapErrorf(err, util.ErrInternal, "decrease key of %d", succ.ID)
				}
			}
		}
	}

	stats.Elapsed = time.Since(startTime)
	return &Solution{Found: false, Stats: stats}, nil
}

// extractPath walks parent pointers back to the start.
func (a *AStar) extractPath(goal *da.SearchNode) ([]da.Coordinate, error) {
	path := make([]da.Coordinate, 0, 16)
	cur := goal
	for {
		x, y := a.grid.ToXY(cur.GetId())
		path = append(path, da.NewCoordinate(x, y))

		parent := cur.GetParent()
		if parent == da.INVALID_ID {
			break
		}
		if len(path) > a.pool.NumNodes() {
			return nil, util.WrapErrorf(nil, util.ErrInternal, "parent cycle at %d", parent)
		}
		cur = a.pool.Get(parent)
		if cur == nil {
			return nil, util.WrapErrorf(nil, util.ErrInternal, "dangling parent %d", parent)
		}
	}
	util.ReverseInPlace(path)
	return path, nil
}
