package ai

import (
	"fmt"
	"sort"

	"broadside/pkg/battleship"
)

// PlacedShip is one ship within a sampled placement.
type PlacedShip struct {
	Length int
	Start  battleship.Cell
	Orient battleship.Orientation
}

// Cells returns the cells the ship occupies.
func (p PlacedShip) Cells() []battleship.Cell {
	return battleship.ShipCells(p.Start, p.Length, p.Orient)
}

// Placement is one full, constraint-valid assignment of all remaining
// ship lengths to grid positions.
type Placement struct {
	Ships []PlacedShip
}

// OccupiedCells returns the set of all cells covered by the placement.
func (p Placement) OccupiedCells() map[battleship.Cell]bool {
	occupied := make(map[battleship.Cell]bool)
	for _, s := range p.Ships {
		for _, c := range s.Cells() {
			occupied[c] = true
		}
	}
	return occupied
}

// Attempt caps for the randomized greedy backtracking search. The
// per-sample multiple bounds total work so sampling never blocks
// indefinitely on near-contradictory knowledge.
const (
	attemptsPerSample = 20
	triesPerShip      = 30
)

// SamplePlacements generates up to count placements of the remaining
// unsunk ships consistent with the recorded evidence: every ship in
// bounds, no overlaps, no ship on a Miss or SunkPart cell, and every
// unresolved Hit cell covered by some ship.
//
// Ships are placed longest-first at randomly chosen positions, with a
// bounded number of retries per ship before the whole placement is
// restarted. When bias is non-nil, candidate positions are drawn from a
// distribution weighted by its historical frequencies.
//
// Fewer than count placements may be returned. If not a single valid
// placement can be produced within the attempt cap, the knowledge itself
// is contradictory and ErrSamplingExhausted is returned.
func SamplePlacements(k *Knowledge, count int, bias *Model) ([]Placement, error) {
	if count <= 0 {
		return nil, nil
	}

	lengths := k.RemainingShips()
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	if len(lengths) == 0 {
		return nil, fmt.Errorf("%w: no ships remaining", ErrSamplingExhausted)
	}

	size := k.Size()
	blocked := make(map[battleship.Cell]bool)
	var hits []battleship.Cell
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			cell := battleship.Cell{Row: r, Col: c}
			switch k.StatusAt(cell) {
			case StatusMiss, StatusSunkPart:
				blocked[cell] = true
			case StatusHit:
				hits = append(hits, cell)
			}
		}
	}

	// Candidate positions per distinct length, independent of ship
	// overlap (checked during placement).
	candidates := make(map[int][]PlacedShip)
	for _, l := range lengths {
		if _, ok := candidates[l]; ok {
			continue
		}
		candidates[l] = legalPositions(l, size, blocked)
		if len(candidates[l]) == 0 {
			return nil, fmt.Errorf("%w: no legal position for ship of length %d", ErrSamplingExhausted, l)
		}
	}

	placements := make([]Placement, 0, count)
	maxAttempts := count * attemptsPerSample
	for attempt := 0; attempt < maxAttempts && len(placements) < count; attempt++ {
		if p, ok := tryPlacement(lengths, candidates, hits, bias); ok {
			placements = append(placements, p)
		}
	}

	if len(placements) == 0 {
		return nil, fmt.Errorf("%w: no valid placement in %d attempts", ErrSamplingExhausted, maxAttempts)
	}
	return placements, nil
}

// legalPositions enumerates every in-bounds position of a ship of the
// given length that avoids blocked cells.
func legalPositions(length, size int, blocked map[battleship.Cell]bool) []PlacedShip {
	var out []PlacedShip
	for _, orient := range []battleship.Orientation{battleship.Horizontal, battleship.Vertical} {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				cand := PlacedShip{Length: length, Start: battleship.Cell{Row: r, Col: c}, Orient: orient}
				ok := true
				for _, cc := range cand.Cells() {
					if !cc.InBounds(size) || blocked[cc] {
						ok = false
						break
					}
				}
				if ok {
					out = append(out, cand)
				}
			}
		}
	}
	return out
}

// tryPlacement makes one randomized backtracking pass over the fleet,
// longest ship first. Each ship gets a bounded number of candidate
// draws; running out fails the whole attempt so the caller restarts.
// Candidates covering still-uncovered hit cells are preferred, so
// sampled placements converge on the evidence quickly.
func tryPlacement(lengths []int, candidates map[int][]PlacedShip, hits []battleship.Cell, bias *Model) (Placement, bool) {
	occupied := make(map[battleship.Cell]bool)
	uncovered := make(map[battleship.Cell]bool, len(hits))
	for _, h := range hits {
		uncovered[h] = true
	}

	placement := Placement{Ships: make([]PlacedShip, 0, len(lengths))}

	var place func(i int) bool
	place = func(i int) bool {
		if i == len(lengths) {
			return len(uncovered) == 0
		}
		for try := 0; try < triesPerShip; try++ {
			cand, ok := pickCandidate(candidates[lengths[i]], occupied, uncovered, bias)
			if !ok {
				return false
			}
			var covered []battleship.Cell
			for _, c := range cand.Cells() {
				occupied[c] = true
				if uncovered[c] {
					delete(uncovered, c)
					covered = append(covered, c)
				}
			}
			placement.Ships = append(placement.Ships, cand)

			if place(i + 1) {
				return true
			}

			// Undo and draw a different candidate for this ship.
			placement.Ships = placement.Ships[:len(placement.Ships)-1]
			for _, c := range cand.Cells() {
				delete(occupied, c)
			}
			for _, c := range covered {
				uncovered[c] = true
			}
		}
		return false
	}

	if !place(0) {
		return Placement{}, false
	}
	return placement, true
}

// pickCandidate draws one non-overlapping candidate, restricted to
// hit-covering candidates whenever any exist.
func pickCandidate(candidates []PlacedShip, occupied, uncovered map[battleship.Cell]bool, bias *Model) (PlacedShip, bool) {
	var legal, covering []PlacedShip
	for _, cand := range candidates {
		overlaps := false
		covers := false
		for _, c := range cand.Cells() {
			if occupied[c] {
				overlaps = true
				break
			}
			if uncovered[c] {
				covers = true
			}
		}
		if overlaps {
			continue
		}
		legal = append(legal, cand)
		if covers {
			covering = append(covering, cand)
		}
	}

	pool := legal
	if len(uncovered) > 0 && len(covering) > 0 {
		pool = covering
	}
	if len(pool) == 0 {
		return PlacedShip{}, false
	}
	if bias == nil {
		return pool[aiIntn(len(pool))], true
	}
	return weightedPick(pool, bias), true
}

// weightedPick draws a candidate with probability proportional to the
// bias model's weight for its (length, bucket, orientation) key.
func weightedPick(pool []PlacedShip, bias *Model) PlacedShip {
	weights := make([]float64, len(pool))
	total := 0.0
	for i, cand := range pool {
		w := bias.Weight(cand.Length, cand.Start, cand.Orient)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return pool[aiIntn(len(pool))]
	}
	target := aiFloat64() * total
	for i, w := range weights {
		target -= w
		if target <= 0 {
			return pool[i]
		}
	}
	return pool[len(pool)-1]
}
