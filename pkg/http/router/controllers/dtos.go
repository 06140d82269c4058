package controllers

import (
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
)

type shortestPathRequest struct {
	StartX int  `json:"sx" validate:"min=0"`
	StartY int  `json:"sy" validate:"min=0"`
	GoalX  int  `json:"gx" validate:"min=0"`
	GoalY  int  `json:"gy" validate:"min=0"`
	Unpack bool `json:"unpack"`
}

func (r shortestPathRequest) start() da.Coordinate {
	return da.NewCoordinate(r.StartX, r.StartY)
}

func (r shortestPathRequest) goal() da.Coordinate {
	return da.NewCoordinate(r.GoalX, r.GoalY)
}

type batchRequest struct {
	Queries []shortestPathRequest `json:"queries" validate:"required,min=1,max=10000,dive"`
	Unpack  bool                  `json:"unpack"`
}

func (r batchRequest) toQueries() []engine.Query {
	queries := make([]engine.Query, len(r.Queries))
	for i, q := range r.Queries {
		queries[i] = engine.Query{Start: q.start(), Goal: q.goal()}
	}
	return queries
}

type coordinateResponse struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type statsResponse struct {
	Expanded  int     `json:"expanded"`
	Generated int     `json:"generated"`
	Touched   int     `json:"touched"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

type shortestPathResponse struct {
	Found bool                 `json:"found"`
	Cost  float64              `json:"cost"`
	Path  []coordinateResponse `json:"path"`
	Stats statsResponse        `json:"stats"`
}

func NewShortestPathResponse(sol *search.Solution) shortestPathResponse {
	path := make([]coordinateResponse, 0, len(sol.Path))
	for _, c := range sol.Path {
		path = append(path, coordinateResponse{X: c.X, Y: c.Y})
	}
	return shortestPathResponse{
		Found: sol.Found,
		Cost:  sol.Cost,
		Path:  path,
		Stats: statsResponse{
			Expanded:  sol.Stats.Expanded,
			Generated: sol.Stats.Generated,
			Touched:   sol.Stats.Touched,
			ElapsedMs: float64(sol.Stats.Elapsed.Microseconds()) / 1000.0,
		},
	}
}

type batchItemResponse struct {
	Result *shortestPathResponse `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func NewBatchResponse(results []engine.QueryResult) []batchItemResponse {
	items := make([]batchItemResponse, len(results))
	for i, res := range results {
		if res.Err != nil {
			items[i].Error = res.Err.Error()
			continue
		}
		sp := NewShortestPathResponse(res.Solution)
		items[i].Result = &sp
	}
	return items
}

type mapInfoResponse struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
