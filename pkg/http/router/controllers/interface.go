package controllers

import (
	"context"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
)

type PathService interface {
	ShortestPath(ctx context.Context, start, goal da.Coordinate, unpack bool) (*search.Solution, error)
	ShortestPaths(ctx context.Context, queries []engine.Query, unpack bool) []engine.QueryResult
	MapSize() (int, int)
}
