package ai

import (
	"fmt"

	"broadside/pkg/battleship"
)

// CellStatus is what the attacker knows about one opponent cell.
type CellStatus uint8

const (
	StatusUnknown CellStatus = iota
	StatusMiss
	StatusHit
	StatusSunkPart
)

func (s CellStatus) String() string {
	switch s {
	case StatusMiss:
		return "miss"
	case StatusHit:
		return "hit"
	case StatusSunkPart:
		return "sunk"
	default:
		return "unknown"
	}
}

// Knowledge tracks everything one attacker knows about the opposing
// board: per-cell status and the multiset of ship lengths not yet
// confirmed sunk. One instance per opposing board; not safe for
// concurrent use.
type Knowledge struct {
	size      int
	status    [][]CellStatus
	remaining []int
}

// NewKnowledge creates an empty tracker for a size x size grid and the
// given fleet composition.
func NewKnowledge(size int, fleet []int) *Knowledge {
	status := make([][]CellStatus, size)
	for i := range status {
		status[i] = make([]CellStatus, size)
	}
	remaining := make([]int, len(fleet))
	copy(remaining, fleet)
	return &Knowledge{size: size, status: status, remaining: remaining}
}

// Size returns the grid dimension.
func (k *Knowledge) Size() int { return k.size }

// StatusAt returns the recorded status of a cell. Out-of-bounds cells
// report StatusMiss so they are never considered targets.
func (k *Knowledge) StatusAt(c battleship.Cell) CellStatus {
	if !c.InBounds(k.size) {
		return StatusMiss
	}
	return k.status[c.Row][c.Col]
}

// IsValidTarget reports whether the cell may still be fired on.
func (k *Knowledge) IsValidTarget(c battleship.Cell) bool {
	return c.InBounds(k.size) && k.status[c.Row][c.Col] == StatusUnknown
}

// RecordResult updates the tracker with the real outcome of a shot.
// Recording a result for an out-of-bounds or already-resolved cell
// returns ErrInvalidState.
func (k *Knowledge) RecordResult(c battleship.Cell, outcome battleship.Outcome) error {
	if !c.InBounds(k.size) {
		return fmt.Errorf("%w: cell %s outside %dx%d grid", ErrInvalidState, c, k.size, k.size)
	}
	if k.status[c.Row][c.Col] != StatusUnknown {
		return fmt.Errorf("%w: cell %s already resolved as %s", ErrInvalidState, c, k.status[c.Row][c.Col])
	}

	switch outcome.Result {
	case battleship.Miss:
		k.status[c.Row][c.Col] = StatusMiss
	case battleship.Hit:
		k.status[c.Row][c.Col] = StatusHit
	case battleship.Sunk:
		k.status[c.Row][c.Col] = StatusHit
		if err := k.markSunk(c, outcome.ShipLength); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown outcome %v", ErrInvalidState, outcome.Result)
	}
	return nil
}

// markSunk flood-fills the orthogonally connected Hit cells around c,
// marks up to length of them as parts of the sunk ship, and removes the
// length from the remaining fleet.
func (k *Knowledge) markSunk(c battleship.Cell, length int) error {
	idx := -1
	for i, l := range k.remaining {
		if l == length {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: no remaining ship of length %d to sink", ErrInvalidState, length)
	}
	k.remaining = append(k.remaining[:idx], k.remaining[idx+1:]...)

	visited := map[battleship.Cell]bool{c: true}
	queue := []battleship.Cell{c}
	var shipCells []battleship.Cell
	for len(queue) > 0 && len(shipCells) < length {
		cur := queue[0]
		queue = queue[1:]
		if k.status[cur.Row][cur.Col] != StatusHit {
			continue
		}
		shipCells = append(shipCells, cur)
		for _, n := range cur.Neighbors(k.size) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	for _, sc := range shipCells {
		k.status[sc.Row][sc.Col] = StatusSunkPart
	}
	return nil
}

// ValidTargets returns every cell that may still be fired on, in
// row-major order.
func (k *Knowledge) ValidTargets() []battleship.Cell {
	var out []battleship.Cell
	for r := 0; r < k.size; r++ {
		for c := 0; c < k.size; c++ {
			if k.status[r][c] == StatusUnknown {
				out = append(out, battleship.Cell{Row: r, Col: c})
			}
		}
	}
	return out
}

// UnresolvedHits returns hit cells not yet attributed to a sunk ship,
// in row-major order.
func (k *Knowledge) UnresolvedHits() []battleship.Cell {
	var out []battleship.Cell
	for r := 0; r < k.size; r++ {
		for c := 0; c < k.size; c++ {
			if k.status[r][c] == StatusHit {
				out = append(out, battleship.Cell{Row: r, Col: c})
			}
		}
	}
	return out
}

// RemainingShips returns a copy of the ship lengths not yet sunk.
func (k *Knowledge) RemainingShips() []int {
	out := make([]int, len(k.remaining))
	copy(out, k.remaining)
	return out
}

// RemainingShipCells returns the total number of ship cells not yet
// accounted for by sunk ships.
func (k *Knowledge) RemainingShipCells() int {
	total := 0
	for _, l := range k.remaining {
		total += l
	}
	return total
}

// Clone returns an independent deep copy of the tracker.
func (k *Knowledge) Clone() *Knowledge {
	clone := NewKnowledge(k.size, k.remaining)
	for r := 0; r < k.size; r++ {
		copy(clone.status[r], k.status[r])
	}
	return clone
}
