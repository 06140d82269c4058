package usecases

import (
	"context"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
)

type PathEngine interface {
	GetGrid() gridmap.Grid
	FindPath(ctx context.Context, start, goal da.Coordinate) (*search.Solution, error)
	FindPaths(ctx context.Context, queries []engine.Query) []engine.QueryResult
}
