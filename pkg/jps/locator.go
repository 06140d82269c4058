package jps

import (
	"github.com/lintang-b-s/gridnav/pkg"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
)

/*
Jump Point Search, without corner cutting.

[1] Harabor, D. and Grastien, A. (2011) "Online Graph Pruning for Pathfinding on Grid Maps", AAAI.
[2] Harabor, D. and Grastien, A. (2014) "Improving Jump Point Search", ICAPS.

a diagonal step from c is legal only when both orthogonal cells next to c in that direction are
open, so a path never squeezes between two blocked corners. under that movement rule the
pruning rules of [1] change:

  - travelling straight (say east) into c from p, a side cell s (north of c) can be reached from p
    by the diagonal p -> s at cost sqrt2 < 2 unless the cell behind s (north of p) is blocked.
    only then are s and the diagonal beyond it (northeast of c) forced neighbours of c.
  - travelling diagonally into c, both orthogonal cells next to p were open (the step was legal),
    so every non natural neighbour of c is reached at least as cheaply without c. diagonal moves
    have no forced neighbours; c is a jump point only when one of its two straight components
    reaches a jump point.

natural neighbours: straight d -> {d}; diagonal d -> {d, and its two straight components}.
*/

// Locator finds the next jump point from a cell in a direction.
type Locator interface {
	// Jump walks from `from` in direction d and returns the first jump point and the cost of the
	// straight walk to it. it returns (INVALID_ID, 0) when the walk dead-ends. the walk never
	// passes goal and never returns from itself.
	Jump(d pkg.Direction, from, goal da.Index) (da.Index, float64)
}

// ForcedCardinal returns the forced neighbour directions of a cell entered by a straight move
// in direction d, given the cell's 3x3 neighbourhood.
func ForcedCardinal(d pkg.Direction, n gridmap.Neighbourhood) pkg.Direction {
	dx, dy := d.Delta()
	var forced pkg.Direction
	if dy == 0 && dx != 0 {
		// sides are north and south, the cell behind a side is one step back in x.
		for _, sy := range [2]int{-1, 1} {
			if n.IsOpen(0, sy) && !n.IsOpen(-dx, sy) {
				forced |= pkg.DirectionFromDelta(0, sy) | pkg.DirectionFromDelta(dx, sy)
			}
		}
	} else if dx == 0 && dy != 0 {
		for _, sx := range [2]int{-1, 1} {
			if n.IsOpen(sx, 0) && !n.IsOpen(sx, -dy) {
				forced |= pkg.DirectionFromDelta(sx, 0) | pkg.DirectionFromDelta(sx, dy)
			}
		}
	}
	return forced
}

// Natural returns the natural neighbour directions for arrival direction d. NONE (the start
// node) has every direction as natural neighbour.
func Natural(d pkg.Direction) pkg.Direction {
	switch {
	case d == pkg.NONE:
		return pkg.ALL_DIRECTIONS
	case d.IsDiagonal():
		h, v := d.Components()
		return d | h | v
	default:
		return d
	}
}

// Successors returns natural ∪ forced directions for a cell entered in direction d, keeping only
// the directions whose first step is legal.
func Successors(d pkg.Direction, n gridmap.Neighbourhood) pkg.Direction {
	dirs := Natural(d)
	if d.IsCardinal() {
		dirs |= ForcedCardinal(d, n)
	}
	for _, dir := range pkg.Directions {
		if dirs&dir != 0 && !n.CanStep(dir) {
			dirs &^= dir
		}
	}
	return dirs
}

// noGoal is used when a jump must ignore goals, e.g. while building a jump table.
const noGoal = -1
