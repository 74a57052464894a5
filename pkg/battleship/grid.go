// Package battleship implements the rules of the game: grids, ships,
// fleets, boards and shot resolution. It knows nothing about strategies,
// networking or persistence.
package battleship

import "fmt"

// DefaultGridSize is the classic 10x10 board.
const DefaultGridSize = 10

// DefaultFleet is the classic fleet composition by ship length.
var DefaultFleet = []int{5, 4, 3, 3, 2}

// Cell is a coordinate on an N x N grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the cell lies on a size x size grid.
func (c Cell) InBounds(size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

// Neighbors returns the four orthogonal neighbors in fixed order:
// up, right, down, left. Out-of-bounds cells are excluded.
func (c Cell) Neighbors(size int) []Cell {
	candidates := []Cell{
		{c.Row - 1, c.Col},
		{c.Row, c.Col + 1},
		{c.Row + 1, c.Col},
		{c.Row, c.Col - 1},
	}
	out := candidates[:0]
	for _, n := range candidates {
		if n.InBounds(size) {
			out = append(out, n)
		}
	}
	return out
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Orientation of a placed ship.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ShipCells enumerates the cells occupied by a ship of the given length
// starting at start with the given orientation. Cells may be out of
// bounds; callers validate with Cell.InBounds.
func ShipCells(start Cell, length int, orient Orientation) []Cell {
	cells := make([]Cell, length)
	for i := 0; i < length; i++ {
		if orient == Horizontal {
			cells[i] = Cell{start.Row, start.Col + i}
		} else {
			cells[i] = Cell{start.Row + i, start.Col}
		}
	}
	return cells
}
