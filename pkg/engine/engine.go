package engine

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/jps"
	"github.com/lintang-b-s/gridnav/pkg/metrics"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"go.uber.org/zap"
)

// Engine answers path queries on one read-only map. every search borrows a searcher (node
// pool, open list, closed set) that no other goroutine uses while the query runs.
type Engine struct {
	grid      gridmap.Grid
	cfg       Config
	searchCfg search.Config
	policy    search.ExpansionPolicy
	table     *jps.JumpTable
	logger    *zap.Logger
	searchers sync.Pool
	pathCache *lru.Cache[pathCacheKey, *search.Solution]
}

// BuildMap builds a map of kind from row-major cell costs, 0 is an obstacle.
func BuildMap(width, height int, cells []uint8, kind gridmap.Kind) (gridmap.Grid, error) {
	return gridmap.BuildMap(kind, width, height, cells)
}

// NewEngineFromFile reads a map file with the configured map kind and builds an engine on it.
func NewEngineFromFile(ctx context.Context, mapFilePath string, cfg Config, logger *zap.Logger) (*Engine, error) {
	kind, err := cfg.GetMapKind()
	if err != nil {
		return nil, err
	}
	logger.Info("Reading map from ", zap.String("mapFilePath", mapFilePath), zap.String("kind", kind.String()))
	grid, err := gridmap.ReadMap(mapFilePath, kind)
	if err != nil {
		return nil, err
	}
	return NewEngine(ctx, grid, cfg, logger)
}

// NewEngine builds an engine over grid. the engine shares grid with its searchers, so the caller
// must not write to it afterwards. ctx bounds the jump-table precompute of jps_offline.
func NewEngine(ctx context.Context, grid gridmap.Grid, cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	searchCfg, err := cfg.SearchConfig()
	if err != nil {
		return nil, err
	}

	logger.Info("Starting grid path engine...",
		zap.Int("width", grid.Width()), zap.Int("height", grid.Height()),
		zap.String("policy", searchCfg.Policy.String()), zap.String("heuristic", searchCfg.Heuristic.String()),
		zap.Duration("timeBudget", searchCfg.TimeBudget))

	if searchCfg.Policy.IsJumpPoint() && !grid.IsUniformCost() {
		return nil, util.WrapErrorf(nil, util.ErrInvalidConfig,
			"%v only supports uniform cost maps, use astar for weighted maps", searchCfg.Policy)
	}

	e := &Engine{
		grid:      grid,
		cfg:       cfg,
		searchCfg: searchCfg,
		logger:    logger,
	}

	if searchCfg.Policy == search.POLICY_JPS_OFFLINE {
		e.table, err = e.loadJumpTable(ctx)
		if err != nil {
			return nil, err
		}
	}

	e.policy, err = search.NewPolicy(searchCfg.Policy, grid, searchCfg.BitScan, e.table)
	if err != nil {
		return nil, err
	}

	// NewAStar only fails on a bad config, checked once here for the pool below.
	if _, err := search.NewAStar(grid, e.policy, searchCfg); err != nil {
		return nil, err
	}
	e.searchers = sync.Pool{
		New: func() any {
			a, _ := search.NewAStar(e.grid, e.policy, e.searchCfg)
			return a
		},
	}

	if cfg.PathCacheSize > 0 {
		e.pathCache, err = lru.New[pathCacheKey, *search.Solution](cfg.PathCacheSize)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInvalidConfig, "path cache")
		}
	}
	return e, nil
}

func (e *Engine) loadJumpTable(ctx context.Context) (*jps.JumpTable, error) {
	path := e.cfg.JumpTablePath
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			e.logger.Info("Reading jump table from ", zap.String("jumpTablePath", path))
			table, err := jps.ReadJumpTable(path)
			if err != nil {
				return nil, err
			}
			if table.Width() != e.grid.Width() || table.Height() != e.grid.Height() {
				return nil, util.WrapErrorf(nil, util.ErrFormat, "jump table %s is %dx%d, map is %dx%d",
					path, table.Width(), table.Height(), e.grid.Width(), e.grid.Height())
			}
			return table, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	e.logger.Info("Precomputing jump table...")
	start := time.Now()
	table, err := jps.Precompute(ctx, e.grid)
	if err != nil {
		return nil, err
	}
	took := time.Since(start)
	metrics.ObservePrecompute(took)
	e.logger.Info("Jump table ready", zap.Duration("took", took))

	if path != "" {
		e.logger.Info("Writing jump table to ", zap.String("jumpTablePath", path))
		if err := table.WriteJumpTable(path); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// GetGrid returns a read-only view of the shared map.
func (e *Engine) GetGrid() gridmap.Grid {
	return gridmap.ReadOnly(e.grid)
}

func (e *Engine) GetConfig() Config {
	return e.cfg
}

func (e *Engine) GetJumpTable() *jps.JumpTable {
	return e.table
}

// FindPath returns the cheapest path from start to goal. a query without a path returns a
// Solution with Found false and no error. cached solutions are shared and must not be modified.
func (e *Engine) FindPath(ctx context.Context, start, goal da.Coordinate) (*search.Solution, error) {
	a := e.searchers.Get().(*search.AStar)
	defer e.searchers.Put(a)

	res := e.answer(ctx, a, Query{Start: start, Goal: goal})
	return res.Solution, res.Err
}
