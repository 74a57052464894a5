package battleship

import (
	"errors"
	"fmt"
	"math/rand"
)

// Result classifies what a shot did.
type Result uint8

const (
	Miss Result = iota
	Hit
	Sunk
)

func (r Result) String() string {
	switch r {
	case Hit:
		return "hit"
	case Sunk:
		return "sunk"
	default:
		return "miss"
	}
}

// Outcome is the full report for one shot. ShipLength is set only when
// Result is Sunk.
type Outcome struct {
	Result     Result `json:"result"`
	ShipLength int    `json:"ship_length,omitempty"`
}

// ErrRepeatShot is returned when a cell is fired on twice.
var ErrRepeatShot = errors.New("cell already fired on")

// Board is one player's grid of placed ships and the shots received.
type Board struct {
	Size  int
	Ships []*Ship
	shots map[Cell]bool
}

// NewBoard creates a board with the given validated fleet placement.
func NewBoard(size int, ships []*Ship) (*Board, error) {
	if err := ValidatePlacement(ships, size); err != nil {
		return nil, err
	}
	return &Board{Size: size, Ships: ships, shots: make(map[Cell]bool)}, nil
}

// ApplyShot resolves a shot against the board.
func (b *Board) ApplyShot(c Cell) (Outcome, error) {
	if !c.InBounds(b.Size) {
		return Outcome{}, fmt.Errorf("shot at %s out of bounds for %dx%d grid", c, b.Size, b.Size)
	}
	if b.shots[c] {
		return Outcome{}, fmt.Errorf("%w: %s", ErrRepeatShot, c)
	}
	b.shots[c] = true

	for _, ship := range b.Ships {
		if !ship.Occupies(c) {
			continue
		}
		if ship.Hit(c) {
			return Outcome{Result: Sunk, ShipLength: ship.Length}, nil
		}
		return Outcome{Result: Hit}, nil
	}
	return Outcome{Result: Miss}, nil
}

// ShotAt reports whether the cell has already been fired on.
func (b *Board) ShotAt(c Cell) bool {
	return b.shots[c]
}

// AllSunk reports whether every ship on the board is sunk.
func (b *Board) AllSunk() bool {
	for _, ship := range b.Ships {
		if !ship.Sunk() {
			return false
		}
	}
	return true
}

// ShipAt returns the ship occupying the cell, or nil.
func (b *Board) ShipAt(c Cell) *Ship {
	for _, ship := range b.Ships {
		if ship.Occupies(c) {
			return ship
		}
	}
	return nil
}

// RandomBoard places the fleet uniformly at random with no overlaps.
// rng may be nil to use the global source.
func RandomBoard(size int, fleet []int, rng *rand.Rand) (*Board, error) {
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	const maxAttempts = 1000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ships := make([]*Ship, 0, len(fleet))
		occupied := make(map[Cell]bool)
		ok := true
		for _, length := range fleet {
			placed := false
			for try := 0; try < 100; try++ {
				orient := Orientation(intn(2))
				start := Cell{intn(size), intn(size)}
				cells := ShipCells(start, length, orient)
				valid := true
				for _, c := range cells {
					if !c.InBounds(size) || occupied[c] {
						valid = false
						break
					}
				}
				if !valid {
					continue
				}
				for _, c := range cells {
					occupied[c] = true
				}
				ships = append(ships, NewShip(length, start, orient))
				placed = true
				break
			}
			if !placed {
				ok = false
				break
			}
		}
		if ok {
			return NewBoard(size, ships)
		}
	}
	return nil, fmt.Errorf("failed to place fleet %v on %dx%d grid", fleet, size, size)
}
