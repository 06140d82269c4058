package search

import (
	"strings"

	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/jps"
	"github.com/lintang-b-s/gridnav/pkg/util"
)

// Successor is a cell reachable from the expanded node, with the cost of the straight
// walk to it.
type Successor struct {
	ID   da.Index
	Cost float64
}

// ExpansionPolicy generates the successors of a node. parent is INVALID_ID for the start node.
// policies hold no per-query state and can be shared by concurrent searches.
type ExpansionPolicy interface {
	Expand(current, parent, goal da.Index, out []Successor) []Successor
}

type PolicyKind uint8

const (
	POLICY_PLAIN PolicyKind = iota
	POLICY_JPS
	POLICY_JPS_OFFLINE
)

func (k PolicyKind) String() string {
	switch k {
	case POLICY_PLAIN:
		return "astar"
	case POLICY_JPS:
		return "jps"
	case POLICY_JPS_OFFLINE:
		return "jps_offline"
	default:
		return "unknown"
	}
}

func (k PolicyKind) IsJumpPoint() bool {
	return k == POLICY_JPS || k == POLICY_JPS_OFFLINE
}

func ParsePolicyKind(s string) (PolicyKind, error) {
	switch strings.ToLower(s) {
	case "astar", "plain":
		return POLICY_PLAIN, nil
	case "jps":
		return POLICY_JPS, nil
	case "jps_offline", "jps+":
		return POLICY_JPS_OFFLINE, nil
	default:
		return 0, util.WrapErrorf(nil, util.ErrInvalidConfig, "unknown search policy %q", s)
	}
}

// NewPolicy builds the expansion policy of kind over grid. jump point policies need a uniform
// cost grid, the offline one also needs the precomputed table of that grid.
func NewPolicy(kind PolicyKind, grid gridmap.Grid, bitScan bool, table *jps.JumpTable) (ExpansionPolicy, error) {
	if kind.IsJumpPoint() && !grid.IsUniformCost() {
		return nil, util.WrapErrorf(nil, util.ErrInvalidConfig, "%v needs a uniform cost map", kind)
	}
	switch kind {
	case POLICY_PLAIN:
		return NewPlainPolicy(grid), nil
	case POLICY_JPS:
		return NewJumpPointPolicy(grid, bitScan), nil
	case POLICY_JPS_OFFLINE:
		return NewOfflineJumpPointPolicy(grid, table)
	default:
		return nil, util.WrapErrorf(nil, util.ErrInvalidConfig, "unknown search policy %d", kind)
	}
}

// PlainPolicy expands all 8 neighbours without corner cutting. a step costs its straight or
// diagonal length times the mean label of the two cells.
type PlainPolicy struct {
	grid gridmap.Grid
}

func NewPlainPolicy(grid gridmap.Grid) *PlainPolicy {
	return &PlainPolicy{grid: grid}
}

func (p *PlainPolicy) Expand(current, parent, goal da.Index, out []Successor) []Successor {
	n := p.grid.GetNeighbours(current)
	x, y := p.grid.ToXY(current)
	label := float64(p.grid.GetLabel(current))
	for _, d := range pkg.Directions {
		if !n.CanStep(d) {
			continue
		}
		dx, dy := d.Delta()
		next := p.grid.ToPaddedID(x+dx, y+dy)
		out = append(out, Successor{
			ID:   next,
			Cost: StepCost(d, label, float64(p.grid.GetLabel(next))),
		})
	}
	return out
}

// StepCost is the cost of one step in direction d between cells labelled a and b.
func StepCost(d pkg.Direction, a, b float64) float64 {
	return d.StepCost() * (a + b) / 2
}

// JumpPointPolicy expands only the jump points reachable in the natural and forced directions of
// the current node.
type JumpPointPolicy struct {
	grid    gridmap.Grid
	locator jps.Locator
}

func NewJumpPointPolicy(grid gridmap.Grid, bitScan bool) *JumpPointPolicy {
	return &JumpPointPolicy{
		grid:    grid,
		locator: jps.NewOnlineLocator(grid, bitScan),
	}
}

// NewOfflineJumpPointPolicy answers jumps from table instead of scanning the map.
func NewOfflineJumpPointPolicy(grid gridmap.Grid, table *jps.JumpTable) (*JumpPointPolicy, error) {
	loc, err := jps.NewOfflineLocator(grid, table)
	if err != nil {
		return nil, err
	}
	return &JumpPointPolicy{grid: grid, locator: loc}, nil
}

func (p *JumpPointPolicy) GetLocator() jps.Locator {
	return p.locator
}

func (p *JumpPointPolicy) Expand(current, parent, goal da.Index, out []Successor) []Successor {
	dirs := jps.Successors(p.arrival(current, parent), p.grid.GetNeighbours(current))
	for _, d := range pkg.Directions {
		if dirs&d == 0 {
			continue
		}
		next, cost := p.locator.Jump(d, current, goal)
		if next == da.INVALID_ID {
			continue
		}
		out = append(out, Successor{ID: next, Cost: cost})
	}
	return out
}

// arrival is the direction of the straight walk parent -> current, NONE for the start node.
func (p *JumpPointPolicy) arrival(current, parent da.Index) pkg.Direction {
	if parent == da.INVALID_ID {
		return pkg.NONE
	}
	cx, cy := p.grid.ToXY(current)
	px, py := p.grid.ToXY(parent)
	return pkg.DirectionFromDelta(cx-px, cy-py)
}
