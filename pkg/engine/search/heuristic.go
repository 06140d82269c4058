package search

import (
	"math"
	"strings"

	"github.com/lintang-b-s/gridnav/pkg"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// Heuristic estimates the cost from (ax, ay) to (bx, by).
type Heuristic func(ax, ay, bx, by int) float64

type HeuristicKind uint8

const (
	HEURISTIC_OCTILE HeuristicKind = iota
	HEURISTIC_EUCLIDEAN
	HEURISTIC_ZERO
)

func (k HeuristicKind) String() string {
	switch k {
	case HEURISTIC_OCTILE:
		return "octile"
	case HEURISTIC_EUCLIDEAN:
		return "euclidean"
	case HEURISTIC_ZERO:
		return "zero"
	default:
		return "unknown"
	}
}

func ParseHeuristicKind(s string) (HeuristicKind, error) {
	switch strings.ToLower(s) {
	case "octile":
		return HEURISTIC_OCTILE, nil
	case "manhattan":
		// every policy moves diagonally, where manhattan overestimates.
		return 0, util.WrapErrorf(nil, util.ErrInvalidConfig, "heuristic %q is not admissible on an 8-connected grid", s)
	case "euclidean":
		return HEURISTIC_EUCLIDEAN, nil
	case "zero", "dijkstra":
		return HEURISTIC_ZERO, nil
	default:
		return 0, util.WrapErrorf(nil, util.ErrInvalidConfig, "unknown heuristic %q", s)
	}
}

func NewHeuristic(kind HeuristicKind) (Heuristic, error) {
	switch kind {
	case HEURISTIC_OCTILE:
		return OctileHeuristic, nil
	case HEURISTIC_EUCLIDEAN:
		return EuclideanHeuristic, nil
	case HEURISTIC_ZERO:
		return ZeroHeuristic, nil
	default:
		return nil, util.WrapErrorf(nil, util.ErrInvalidConfig, "unknown heuristic %d", kind)
	}
}

// OctileHeuristic is the exact distance on an empty 8-connected grid with unit straight and
// sqrt2 diagonal steps.
func OctileHeuristic(ax, ay, bx, by int) float64 {
	dx := util.Abs(ax - bx)
	dy := util.Abs(ay - by)
	return float64(util.Max(dx, dy)) + (pkg.SQRT2-1)*float64(util.Min(dx, dy))
}

func EuclideanHeuristic(ax, ay, bx, by int) float64 {
	return math.Hypot(float64(ax-bx), float64(ay-by))
}

func ZeroHeuristic(ax, ay, bx, by int) float64 {
	return 0
}
