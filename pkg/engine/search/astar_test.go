package search

import (
	"context"
	"testing"
	"time"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/jps"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func buildRows(t *testing.T, kind gridmap.Kind, rows ...string) gridmap.Grid {
	g, err := gridmap.BuildMapFromRows(kind, rows)
	require.NoError(t, err)
	return g
}

func randomGrid(t *testing.T, rd *rand.Rand, kind gridmap.Kind, width, height int, density float64, maxCost int) gridmap.Grid {
	cells := make([]uint8, width*height)
	for i := range cells {
		if rd.Float64() < density {
			continue
		}
		cells[i] = uint8(1 + rd.Intn(maxCost))
	}
	g, err := gridmap.BuildMap(kind, width, height, cells)
	require.NoError(t, err)
	return g
}

func newSearcher(t *testing.T, grid gridmap.Grid, kind PolicyKind, cfg Config) *AStar {
	var table *jps.JumpTable
	if kind == POLICY_JPS_OFFLINE {
		var err error
		table, err = jps.Precompute(context.Background(), grid)
		require.NoError(t, err)
	}
	policy, err := NewPolicy(kind, grid, cfg.BitScan, table)
	require.NoError(t, err)
	cfg.Policy = kind
	a, err := NewAStar(grid, policy, cfg)
	require.NoError(t, err)
	return a
}

func randomOpenCell(rd *rand.Rand, g gridmap.Grid) (int, int) {
	for {
		x, y := rd.Intn(g.Width()), rd.Intn(g.Height())
		if g.IsTraversable(g.ToPaddedID(x, y)) {
			return x, y
		}
	}
}

func TestOpenGridSingleDiagonalJump(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		".....",
		".....",
		".....",
		".....",
		".....",
	)
	for _, kind := range []PolicyKind{POLICY_JPS, POLICY_JPS_OFFLINE} {
		a := newSearcher(t, g, kind, DefaultConfig())
		sol, err := a.FindPath(context.Background(), NewProblem(0, 0, 4, 4))
		require.NoError(t, err)
		require.True(t, sol.Found)
		assert.InDelta(t, 4*pkg.SQRT2, sol.Cost, pkg.EPSILON)
		assert.Equal(t, []da.Coordinate{da.NewCoordinate(0, 0), da.NewCoordinate(4, 4)}, sol.Path)
		assert.Equal(t, 1, sol.Stats.Expanded)
	}

	a := newSearcher(t, g, POLICY_PLAIN, DefaultConfig())
	sol, err := a.FindPath(context.Background(), NewProblem(0, 0, 4, 4))
	require.NoError(t, err)
	assert.InDelta(t, 4*pkg.SQRT2, sol.Cost, pkg.EPSILON)
	assert.Len(t, sol.Path, 5)
}

func TestWallWithGapDetours(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		".....",
		"..@..",
		"..@..",
		"..@..",
		"..@..",
	)
	want := 8 + 2*pkg.SQRT2

	for _, kind := range []PolicyKind{POLICY_PLAIN, POLICY_JPS, POLICY_JPS_OFFLINE} {
		t.Run(kind.String(), func(t *testing.T) {
			a := newSearcher(t, g, kind, DefaultConfig())
			sol, err := a.FindPath(context.Background(), NewProblem(0, 4, 4, 4))
			require.NoError(t, err)
			require.True(t, sol.Found)
			assert.InDelta(t, want, sol.Cost, 1e-9)

			cost, err := ValidatePath(g, sol.Path)
			require.NoError(t, err)
			assert.InDelta(t, sol.Cost, cost, 1e-9)
			assert.Contains(t, UnpackPath(sol.Path), da.NewCoordinate(2, 0))
		})
	}
}

func TestStartEqualsGoal(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		"...",
		".@.",
		"...",
	)
	for _, kind := range []PolicyKind{POLICY_PLAIN, POLICY_JPS, POLICY_JPS_OFFLINE} {
		a := newSearcher(t, g, kind, DefaultConfig())
		sol, err := a.FindPath(context.Background(), NewProblem(2, 1, 2, 1))
		require.NoError(t, err)
		require.True(t, sol.Found)
		assert.Equal(t, 0.0, sol.Cost)
		assert.Equal(t, []da.Coordinate{da.NewCoordinate(2, 1)}, sol.Path)
		assert.Equal(t, 0, sol.Stats.Expanded)
	}
}

func TestInvalidQueries(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		"...",
		".@.",
		"...",
	)
	a := newSearcher(t, g, POLICY_JPS, DefaultConfig())

	tests := []struct {
		name string
		p    Problem
	}{
		{name: "start on obstacle", p: NewProblem(1, 1, 0, 0)},
		{name: "goal on obstacle", p: NewProblem(0, 0, 1, 1)},
		{name: "start outside", p: NewProblem(-1, 0, 2, 2)},
		{name: "goal outside", p: NewProblem(0, 0, 3, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := a.FindPath(context.Background(), tt.p)
			assert.Nil(t, sol)
			assert.ErrorIs(t, err, util.ErrInvalidQuery)
		})
	}
}

func TestNoPathIsNotAnError(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		"..@..",
		"..@..",
		"..@..",
	)
	for _, kind := range []PolicyKind{POLICY_PLAIN, POLICY_JPS, POLICY_JPS_OFFLINE} {
		a := newSearcher(t, g, kind, DefaultConfig())
		sol, err := a.FindPath(context.Background(), NewProblem(0, 0, 4, 2))
		require.NoError(t, err)
		assert.False(t, sol.Found)
		assert.Nil(t, sol.Path)
	}
}

func TestDiagonalGapIsNotCut(t *testing.T) {
	// the only diagonal link between the halves squeezes between two obstacles.
	g := buildRows(t, gridmap.KIND_BITPACKED,
		"..@..",
		"..@..",
		"...@.",
		"@@@..",
	)
	for _, kind := range []PolicyKind{POLICY_PLAIN, POLICY_JPS, POLICY_JPS_OFFLINE} {
		a := newSearcher(t, g, kind, DefaultConfig())
		sol, err := a.FindPath(context.Background(), NewProblem(0, 0, 4, 0))
		require.NoError(t, err)
		assert.False(t, sol.Found, kind.String())
	}
}

func TestJumpPointSearchIsOptimal(t *testing.T) {
	rd := rand.New(rand.NewSource(1))
	for i := 0; i < 12; i++ {
		width, height := 5+rd.Intn(70), 5+rd.Intn(40)
		g := randomGrid(t, rd, gridmap.KIND_BITPACKED, width, height, 0.05+0.05*float64(i%6), 1)

		plain := newSearcher(t, g, POLICY_PLAIN, DefaultConfig())
		online := newSearcher(t, g, POLICY_JPS, DefaultConfig())
		stepping := newSearcher(t, g, POLICY_JPS, Config{Heuristic: HEURISTIC_OCTILE, HeapArity: 4, BitScan: false})
		offline := newSearcher(t, g, POLICY_JPS_OFFLINE, DefaultConfig())

		for q := 0; q < 25; q++ {
			sx, sy := randomOpenCell(rd, g)
			gx, gy := randomOpenCell(rd, g)
			p := NewProblem(sx, sy, gx, gy)

			want, err := plain.FindPath(context.Background(), p)
			require.NoError(t, err)

			for _, a := range []*AStar{online, stepping, offline} {
				got, err := a.FindPath(context.Background(), p)
				require.NoError(t, err)
				require.Equal(t, want.Found, got.Found, "%dx%d %+v", width, height, p)
				if !want.Found {
					continue
				}
				assert.InDelta(t, want.Cost, got.Cost, 1e-6, "%dx%d %+v", width, height, p)

				cost, err := ValidatePath(g, got.Path)
				require.NoError(t, err)
				assert.InDelta(t, got.Cost, cost, 1e-6)
				assert.Equal(t, p.Start, got.Path[0])
				assert.Equal(t, p.Goal, got.Path[len(got.Path)-1])
			}
		}
	}
}

func TestWeightedPlainSearchMatchesDijkstra(t *testing.T) {
	rd := rand.New(rand.NewSource(9))
	for _, kind := range []gridmap.Kind{gridmap.KIND_WEIGHTED, gridmap.KIND_RLE} {
		g := randomGrid(t, rd, kind, 40, 30, 0.2, 9)
		require.False(t, g.IsUniformCost())

		octile := newSearcher(t, g, POLICY_PLAIN, DefaultConfig())
		dijkstra := newSearcher(t, g, POLICY_PLAIN, Config{Heuristic: HEURISTIC_ZERO, HeapArity: 4})

		for q := 0; q < 40; q++ {
			sx, sy := randomOpenCell(rd, g)
			gx, gy := randomOpenCell(rd, g)
			p := NewProblem(sx, sy, gx, gy)

			want, err := dijkstra.FindPath(context.Background(), p)
			require.NoError(t, err)
			got, err := octile.FindPath(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, want.Found, got.Found)
			if !got.Found {
				continue
			}
			assert.InDelta(t, want.Cost, got.Cost, 1e-6)

			cost, err := ValidatePath(g, got.Path)
			require.NoError(t, err)
			assert.InDelta(t, got.Cost, cost, 1e-6)
		}
	}
}

func TestJumpPointPolicyNeedsUniformCost(t *testing.T) {
	g := buildRows(t, gridmap.KIND_WEIGHTED, "..5", "...")
	_, err := NewPolicy(POLICY_JPS, g, true, nil)
	assert.ErrorIs(t, err, util.ErrInvalidConfig)

	uniform := buildRows(t, gridmap.KIND_BITPACKED, "...", "...")
	_, err = NewPolicy(POLICY_JPS_OFFLINE, uniform, true, nil)
	assert.ErrorIs(t, err, util.ErrBadParamInput)
}

func TestRepeatedQueriesAreIdempotent(t *testing.T) {
	rd := rand.New(rand.NewSource(21))
	g := randomGrid(t, rd, gridmap.KIND_BITPACKED, 60, 40, 0.25, 1)
	a := newSearcher(t, g, POLICY_JPS, DefaultConfig())

	for q := 0; q < 10; q++ {
		sx, sy := randomOpenCell(rd, g)
		gx, gy := randomOpenCell(rd, g)
		p := NewProblem(sx, sy, gx, gy)

		first, err := a.FindPath(context.Background(), p)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := a.FindPath(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, first.Found, again.Found)
			assert.Equal(t, first.Cost, again.Cost)
			assert.Equal(t, first.Path, again.Path)
			assert.Equal(t, first.Stats.Expanded, again.Stats.Expanded)
		}
	}
}

func TestBoundaryRing(t *testing.T) {
	const w, h = 9, 7
	rows := make([]string, h)
	for y := range rows {
		row := make([]byte, w)
		for x := range row {
			row[x] = '.'
		}
		rows[y] = string(row)
	}
	g := buildRows(t, gridmap.KIND_BITPACKED, rows...)

	var ring []da.Coordinate
	for x := 0; x < w; x++ {
		ring = append(ring, da.NewCoordinate(x, 0), da.NewCoordinate(x, h-1))
	}
	for y := 1; y < h-1; y++ {
		ring = append(ring, da.NewCoordinate(0, y), da.NewCoordinate(w-1, y))
	}

	for _, kind := range []PolicyKind{POLICY_PLAIN, POLICY_JPS, POLICY_JPS_OFFLINE} {
		a := newSearcher(t, g, kind, DefaultConfig())
		for _, s := range ring {
			for _, goal := range ring {
				sol, err := a.FindPath(context.Background(), Problem{Start: s, Goal: goal})
				require.NoError(t, err)
				require.True(t, sol.Found)
				want := OctileHeuristic(s.GetX(), s.GetY(), goal.GetX(), goal.GetY())
				assert.InDelta(t, want, sol.Cost, 1e-9, "%v %v -> %v", kind, s, goal)
			}
		}
	}
}

func TestCancelledSearch(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED, "....", "....")
	a := newSearcher(t, g, POLICY_JPS, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol, err := a.FindPath(ctx, NewProblem(0, 0, 3, 1))
	assert.Nil(t, sol)
	assert.ErrorIs(t, err, util.ErrSearchCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	// the searcher is still usable afterwards.
	sol, err = a.FindPath(context.Background(), NewProblem(0, 0, 3, 1))
	require.NoError(t, err)
	assert.True(t, sol.Found)
}

func TestTimeBudgetExceeded(t *testing.T) {
	rd := rand.New(rand.NewSource(4))
	g := randomGrid(t, rd, gridmap.KIND_WEIGHTED, 300, 300, 0.0, 5)
	cfg := Config{Heuristic: HEURISTIC_ZERO, HeapArity: 2, TimeBudget: time.Nanosecond}
	a := newSearcher(t, g, POLICY_PLAIN, cfg)

	sol, err := a.FindPath(context.Background(), NewProblem(0, 0, 299, 299))
	assert.Nil(t, sol)
	assert.ErrorIs(t, err, util.ErrTimeBudgetExceeded)

	_, err = NewAStar(g, NewPlainPolicy(g), Config{TimeBudget: -time.Second})
	assert.ErrorIs(t, err, util.ErrInvalidConfig)
}

func TestHeuristics(t *testing.T) {
	assert.InDelta(t, 3+2*pkg.SQRT2, OctileHeuristic(0, 0, 5, 2), 1e-12)
	assert.InDelta(t, 5.0, EuclideanHeuristic(1, 1, 4, 5), 1e-12)
	assert.Equal(t, 0.0, ZeroHeuristic(0, 0, 5, 2))

	for _, name := range []string{"octile", "euclidean", "zero"} {
		kind, err := ParseHeuristicKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
		h, err := NewHeuristic(kind)
		require.NoError(t, err)
		assert.NotNil(t, h)
	}
	for _, name := range []string{"chebyshev", "manhattan", "Manhattan"} {
		_, err := ParseHeuristicKind(name)
		assert.ErrorIs(t, err, util.ErrInvalidConfig, name)
	}
}

func TestParsePolicyKind(t *testing.T) {
	for _, name := range []string{"astar", "jps", "jps_offline"} {
		kind, err := ParsePolicyKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
	}
	_, err := ParsePolicyKind("cluster")
	assert.ErrorIs(t, err, util.ErrInvalidConfig)
}

func TestUnpackAndValidatePath(t *testing.T) {
	g := buildRows(t, gridmap.KIND_BITPACKED,
		"....",
		".@..",
		"....",
	)
	path := []da.Coordinate{da.NewCoordinate(0, 0), da.NewCoordinate(0, 2), da.NewCoordinate(2, 2)}
	assert.Equal(t, []da.Coordinate{
		da.NewCoordinate(0, 0), da.NewCoordinate(0, 1), da.NewCoordinate(0, 2),
		da.NewCoordinate(1, 2), da.NewCoordinate(2, 2),
	}, UnpackPath(path))

	cost, err := ValidatePath(g, path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cost)

	// cuts the corner of (1,1).
	_, err = ValidatePath(g, []da.Coordinate{da.NewCoordinate(0, 1), da.NewCoordinate(1, 2)})
	assert.ErrorIs(t, err, util.ErrBadParamInput)

	_, err = ValidatePath(g, []da.Coordinate{da.NewCoordinate(0, 0), da.NewCoordinate(2, 1)})
	assert.ErrorIs(t, err, util.ErrBadParamInput)

	_, err = ValidatePath(g, nil)
	assert.ErrorIs(t, err, util.ErrBadParamInput)
}
