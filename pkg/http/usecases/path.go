package usecases

import (
	"context"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"go.uber.org/zap"
)

type PathService struct {
	log    *zap.Logger
	engine PathEngine
}

func NewPathService(log *zap.Logger, engine PathEngine) *PathService {
	return &PathService{
		log:    log,
		engine: engine,
	}
}

// ShortestPath answers one query. solutions may come from the engine path cache, so an unpacked
// path is returned on a copy.
func (ps *PathService) ShortestPath(ctx context.Context, start, goal da.Coordinate, unpack bool) (*search.Solution, error) {
	sol, err := ps.engine.FindPath(ctx, start, goal)
	if err != nil {
		return nil, err
	}
	if !unpack {
		return sol, nil
	}
	return unpackSolution(sol), nil
}

func (ps *PathService) ShortestPaths(ctx context.Context, queries []engine.Query, unpack bool) []engine.QueryResult {
	results := ps.engine.FindPaths(ctx, queries)
	ps.log.Debug("batch answered", zap.Int("queries", len(queries)), zap.Bool("unpack", unpack))
	if !unpack {
		return results
	}
	for i := range results {
		if results[i].Err == nil {
			results[i].Solution = unpackSolution(results[i].Solution)
		}
	}
	return results
}

func (ps *PathService) MapSize() (int, int) {
	g := ps.engine.GetGrid()
	return g.Width(), g.Height()
}

func unpackSolution(sol *search.Solution) *search.Solution {
	unpacked := *sol
	unpacked.Path = search.UnpackPath(sol.Path)
	return &unpacked
}
