package ai

import "broadside/pkg/battleship"

// Heatmap is a per-cell hit probability estimate aggregated from a batch
// of sampled placements. It is rebuilt fresh each turn and never
// persisted.
type Heatmap struct {
	Size int
	Prob [][]float64
}

// BuildHeatmap counts, for every sampled placement, the cells occupied
// by any ship, normalized by the number of samples.
func BuildHeatmap(k *Knowledge, placements []Placement) *Heatmap {
	size := k.Size()
	h := &Heatmap{Size: size, Prob: make([][]float64, size)}
	for i := range h.Prob {
		h.Prob[i] = make([]float64, size)
	}
	if len(placements) == 0 {
		return h
	}

	for _, p := range placements {
		for _, ship := range p.Ships {
			for _, c := range ship.Cells() {
				h.Prob[c.Row][c.Col]++
			}
		}
	}
	n := float64(len(placements))
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			h.Prob[r][c] /= n
		}
	}
	return h
}

// At returns the estimated hit probability of a cell.
func (h *Heatmap) At(c battleship.Cell) float64 {
	if !c.InBounds(h.Size) {
		return 0
	}
	return h.Prob[c.Row][c.Col]
}

// BestCell returns the most probable valid target. Ties are broken
// deterministically: cells adjacent to an unresolved hit win first, then
// lowest row, then lowest column. The second return is false when no
// valid target exists.
func (h *Heatmap) BestCell(k *Knowledge) (battleship.Cell, bool) {
	nearHit := make(map[battleship.Cell]bool)
	for _, hit := range k.UnresolvedHits() {
		for _, n := range hit.Neighbors(k.Size()) {
			nearHit[n] = true
		}
	}

	var best battleship.Cell
	bestProb := -1.0
	bestNear := false
	found := false
	for _, c := range k.ValidTargets() {
		p := h.At(c)
		switch {
		case p > bestProb:
		case p == bestProb && nearHit[c] && !bestNear:
		default:
			continue
		}
		best, bestProb, bestNear, found = c, p, nearHit[c], true
	}
	return best, found
}
