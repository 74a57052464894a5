package battleship

import "fmt"

// Ship is one placed vessel and its damage state.
type Ship struct {
	Length int         `json:"length"`
	Start  Cell        `json:"start"`
	Orient Orientation `json:"orient"`
	hits   map[Cell]bool
}

// NewShip creates a ship at the given start cell and orientation.
func NewShip(length int, start Cell, orient Orientation) *Ship {
	return &Ship{Length: length, Start: start, Orient: orient, hits: make(map[Cell]bool)}
}

// Cells returns the cells the ship occupies.
func (s *Ship) Cells() []Cell {
	return ShipCells(s.Start, s.Length, s.Orient)
}

// Occupies reports whether the ship covers the cell.
func (s *Ship) Occupies(c Cell) bool {
	for _, sc := range s.Cells() {
		if sc == c {
			return true
		}
	}
	return false
}

// Hit records damage at the cell. It reports whether the ship is now sunk.
func (s *Ship) Hit(c Cell) bool {
	if s.hits == nil {
		s.hits = make(map[Cell]bool)
	}
	if s.Occupies(c) {
		s.hits[c] = true
	}
	return s.Sunk()
}

// Sunk reports whether every cell of the ship has been hit.
func (s *Ship) Sunk() bool {
	return len(s.hits) >= s.Length
}

// HitCount returns the number of distinct cells hit on this ship.
func (s *Ship) HitCount() int {
	return len(s.hits)
}

// ValidatePlacement checks that every ship lies fully on a size x size
// grid and that no two ships overlap.
func ValidatePlacement(ships []*Ship, size int) error {
	occupied := make(map[Cell]bool)
	for _, ship := range ships {
		for _, c := range ship.Cells() {
			if !c.InBounds(size) {
				return fmt.Errorf("ship of length %d at %s extends out of bounds at %s", ship.Length, ship.Start, c)
			}
			if occupied[c] {
				return fmt.Errorf("ships overlap at %s", c)
			}
			occupied[c] = true
		}
	}
	return nil
}
