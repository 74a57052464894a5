package ai

import (
	"context"
	"fmt"

	"broadside/pkg/battleship"
)

// HuntTargetStrategy is the classic two-phase state machine. While no
// live hit is pending it scans a checkerboard parity subset, which
// guarantees coverage given the minimum ship length of 2. Once a hit
// lands it probes around the unresolved hits until the ship is
// confirmed sunk, then reverts to hunting.
type HuntTargetStrategy struct{}

func (HuntTargetStrategy) Name() string { return "medium" }

func (s HuntTargetStrategy) SelectTarget(_ context.Context, k *Knowledge) (battleship.Cell, error) {
	if hits := k.UnresolvedHits(); len(hits) > 0 {
		if c, ok := targetShot(k, hits); ok {
			return c, nil
		}
	}
	return huntShot(k)
}

// huntShot picks a random cell on the checkerboard parity subset
// (row+col even), falling back to any valid cell once the parity subset
// is exhausted.
func huntShot(k *Knowledge) (battleship.Cell, error) {
	targets := k.ValidTargets()
	if len(targets) == 0 {
		return battleship.Cell{}, fmt.Errorf("no valid targets remain")
	}
	var parity []battleship.Cell
	for _, c := range targets {
		if (c.Row+c.Col)%2 == 0 {
			parity = append(parity, c)
		}
	}
	if len(parity) > 0 {
		return parity[aiIntn(len(parity))], nil
	}
	return targets[aiIntn(len(targets))], nil
}

// targetShot probes around unresolved hits. Groups of two or more
// aligned hits are extended at their ends first; lone hits are probed at
// their four orthogonal neighbors in fixed order: up, right, down, left.
func targetShot(k *Knowledge, hits []battleship.Cell) (battleship.Cell, bool) {
	for _, group := range groupHits(k, hits) {
		if len(group) < 2 {
			continue
		}
		if c, ok := extendLine(k, group); ok {
			return c, true
		}
	}
	for _, hit := range hits {
		for _, n := range hit.Neighbors(k.Size()) {
			if k.IsValidTarget(n) {
				return n, true
			}
		}
	}
	return battleship.Cell{}, false
}

// groupHits partitions unresolved hits into orthogonally connected
// groups. Input is row-major, so group order is deterministic.
func groupHits(k *Knowledge, hits []battleship.Cell) [][]battleship.Cell {
	used := make(map[battleship.Cell]bool)
	hitSet := make(map[battleship.Cell]bool, len(hits))
	for _, h := range hits {
		hitSet[h] = true
	}

	var groups [][]battleship.Cell
	for _, h := range hits {
		if used[h] {
			continue
		}
		group := []battleship.Cell{h}
		used[h] = true
		for i := 0; i < len(group); i++ {
			for _, n := range group[i].Neighbors(k.Size()) {
				if hitSet[n] && !used[n] {
					used[n] = true
					group = append(group, n)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// extendLine returns the first valid cell beyond either end of an
// aligned group of hits. Groups that are not a straight line (crossing
// ships) yield nothing here and fall through to neighbor probing.
func extendLine(k *Knowledge, group []battleship.Cell) (battleship.Cell, bool) {
	row, col := group[0].Row, group[0].Col
	horizontal, vertical := true, true
	minR, maxR, minC, maxC := row, row, col, col
	for _, c := range group {
		if c.Row != row {
			horizontal = false
		}
		if c.Col != col {
			vertical = false
		}
		minR, maxR = min(minR, c.Row), max(maxR, c.Row)
		minC, maxC = min(minC, c.Col), max(maxC, c.Col)
	}

	var ends []battleship.Cell
	switch {
	case horizontal && !vertical:
		ends = []battleship.Cell{{Row: row, Col: minC - 1}, {Row: row, Col: maxC + 1}}
	case vertical && !horizontal:
		ends = []battleship.Cell{{Row: minR - 1, Col: col}, {Row: maxR + 1, Col: col}}
	default:
		return battleship.Cell{}, false
	}
	for _, c := range ends {
		if k.IsValidTarget(c) {
			return c, true
		}
	}
	return battleship.Cell{}, false
}
