package ai

import (
	"testing"

	"broadside/pkg/battleship"
)

func TestBuildHeatmapCounts(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	placements := []Placement{
		{Ships: []PlacedShip{{Length: 2, Start: battleship.Cell{Row: 0, Col: 0}, Orient: battleship.Horizontal}}},
		{Ships: []PlacedShip{{Length: 2, Start: battleship.Cell{Row: 0, Col: 1}, Orient: battleship.Horizontal}}},
	}
	h := BuildHeatmap(k, placements)

	cases := []struct {
		cell battleship.Cell
		want float64
	}{
		{battleship.Cell{Row: 0, Col: 0}, 0.5},
		{battleship.Cell{Row: 0, Col: 1}, 1.0},
		{battleship.Cell{Row: 0, Col: 2}, 0.5},
		{battleship.Cell{Row: 1, Col: 0}, 0},
		{battleship.Cell{Row: 3, Col: 3}, 0},
	}
	for _, c := range cases {
		if got := h.At(c.cell); got != c.want {
			t.Errorf("At(%s) = %v, want %v", c.cell, got, c.want)
		}
	}
}

func TestBuildHeatmapTotalMass(t *testing.T) {
	SeedRng(31)
	defer ResetRng()

	// Every sampled placement contributes exactly the remaining ship
	// cells, so the heat summed over the whole grid equals that count.
	k := NewKnowledge(10, battleship.DefaultFleet)
	placements, err := SamplePlacements(k, 32, nil)
	if err != nil {
		t.Fatalf("SamplePlacements failed: %v", err)
	}
	h := BuildHeatmap(k, placements)

	sum := 0.0
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			sum += h.Prob[r][c]
		}
	}
	want := float64(k.RemainingShipCells())
	if diff := sum - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total heat = %v, want %v", sum, want)
	}
}

func TestBuildHeatmapEmptyPlacements(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	h := BuildHeatmap(k, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if h.Prob[r][c] != 0 {
				t.Fatalf("expected zero heat at (%d,%d), got %v", r, c, h.Prob[r][c])
			}
		}
	}
}

func TestHeatmapAtOutOfBounds(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	h := BuildHeatmap(k, nil)
	if got := h.At(battleship.Cell{Row: -1, Col: 0}); got != 0 {
		t.Errorf("expected 0 out of bounds, got %v", got)
	}
}

func TestBestCellPicksHighest(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	placements := []Placement{
		{Ships: []PlacedShip{{Length: 2, Start: battleship.Cell{Row: 2, Col: 1}, Orient: battleship.Horizontal}}},
		{Ships: []PlacedShip{{Length: 2, Start: battleship.Cell{Row: 1, Col: 2}, Orient: battleship.Vertical}}},
	}
	h := BuildHeatmap(k, placements)

	best, ok := h.BestCell(k)
	if !ok {
		t.Fatal("expected a best cell")
	}
	// (2,2) is covered by both placements, every other cell by at most one.
	if best != (battleship.Cell{Row: 2, Col: 2}) {
		t.Errorf("expected (2,2), got %s", best)
	}
}

func TestBestCellTieBreaksRowMajor(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	best, ok := BuildHeatmap(k, nil).BestCell(k)
	if !ok {
		t.Fatal("expected a best cell on an open board")
	}
	if best != (battleship.Cell{Row: 0, Col: 0}) {
		t.Errorf("expected row-major first cell (0,0) on a flat map, got %s", best)
	}
}

func TestBestCellPrefersNearHitOnTie(t *testing.T) {
	k := NewKnowledge(4, []int{2})
	if err := k.RecordResult(battleship.Cell{Row: 2, Col: 2}, battleship.Outcome{Result: battleship.Hit}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}

	// A flat heatmap leaves every valid target tied at zero; the cell
	// adjacent to the hit must win over the row-major leader.
	h := BuildHeatmap(k, nil)
	best, ok := h.BestCell(k)
	if !ok {
		t.Fatal("expected a best cell")
	}
	neighbors := map[battleship.Cell]bool{}
	for _, n := range (battleship.Cell{Row: 2, Col: 2}).Neighbors(4) {
		neighbors[n] = true
	}
	if !neighbors[best] {
		t.Errorf("expected a neighbor of the hit, got %s", best)
	}
	// Fixed neighbor order makes the upward cell the deterministic pick.
	if best != (battleship.Cell{Row: 1, Col: 2}) {
		t.Errorf("expected (1,2), got %s", best)
	}
}

func TestBestCellNoTargets(t *testing.T) {
	k := NewKnowledge(1, []int{1})
	if err := k.RecordResult(battleship.Cell{Row: 0, Col: 0}, battleship.Outcome{Result: battleship.Miss}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}
	h := BuildHeatmap(k, nil)
	if _, ok := h.BestCell(k); ok {
		t.Error("expected no best cell with every cell resolved")
	}
}
