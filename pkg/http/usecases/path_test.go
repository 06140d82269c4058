package usecases

import (
	"context"
	"testing"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUnpackDoesNotTouchCachedSolution(t *testing.T) {
	g, err := gridmap.BuildMapFromRows(gridmap.KIND_BITPACKED, []string{
		"......",
		"......",
		"......",
	})
	require.NoError(t, err)
	cfg := engine.DefaultConfig()
	cfg.PathCacheSize = 8
	e, err := engine.NewEngine(context.Background(), g, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ps := NewPathService(zaptest.NewLogger(t), e)
	start, goal := da.NewCoordinate(0, 0), da.NewCoordinate(5, 0)

	unpacked, err := ps.ShortestPath(context.Background(), start, goal, true)
	require.NoError(t, err)
	assert.Len(t, unpacked.Path, 6)

	packed, err := ps.ShortestPath(context.Background(), start, goal, false)
	require.NoError(t, err)
	assert.Len(t, packed.Path, 2)
	assert.Equal(t, unpacked.Cost, packed.Cost)

	results := ps.ShortestPaths(context.Background(), []engine.Query{engine.NewQuery(0, 0, 5, 0)}, true)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Solution.Path, 6)

	packed, err = ps.ShortestPath(context.Background(), start, goal, false)
	require.NoError(t, err)
	assert.Len(t, packed.Path, 2)

	w, h := ps.MapSize()
	assert.Equal(t, 6, w)
	assert.Equal(t, 3, h)
}
