package engine

import (
	"strings"
	"sync"
)

// Board is one player's grid together with the fleet placed on it.
//
// The mutex covers both the cells and the ships' hit counters: placement by
// the owner, shot resolution by the opponent and win scans from either side
// all go through it.
type Board struct {
	mu     sync.Mutex
	grid   [BoardSize][BoardSize]Cell
	fleet  [FleetSize]Ship
	placed int
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{}
}

// CanPlace reports whether a ship of type t fits at origin along o
func (b *Board) CanPlace(t ShipType, origin Coord, o Orientation) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canPlace(shipCells(t, origin, o))
}

func (b *Board) canPlace(cells []Coord) bool {
	for _, c := range cells {
		if !c.InBounds() || b.grid[c.X][c.Y].State != CellEmpty {
			return false
		}
	}
	return true
}

// Place marks the cells for a new ship and registers it in the fleet.
// The legality check and the mutation happen under one lock acquisition.
func (b *Board) Place(t ShipType, origin Coord, o Orientation) (*Ship, error) {
	if !t.Valid() {
		return nil, ErrInvalidShipType
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.placed >= FleetSize {
		return nil, ErrFleetFull
	}
	cells := shipCells(t, origin, o)
	if !b.canPlace(cells) {
		return nil, ErrInvalidPlacement
	}

	for _, c := range cells {
		b.grid[c.X][c.Y] = Cell{State: CellOccupied, Ship: t}
	}
	ship := &b.fleet[b.placed]
	*ship = Ship{Type: t, Cells: cells}
	b.placed++

	copied := *ship
	copied.Cells = append([]Coord(nil), cells...)
	return &copied, nil
}

// ResolveShot applies an incoming shot. Out-of-range, empty and already-hit
// cells are misses and leave the board untouched.
func (b *Board) ResolveShot(c Coord) ShotResult {
	if !c.InBounds() {
		return Miss
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cell := b.grid[c.X][c.Y]
	if cell.State != CellOccupied {
		return Miss
	}
	b.grid[c.X][c.Y].State = CellHit

	ship := b.shipAt(c)
	if ship == nil {
		// every occupied cell is registered to a ship at placement
		return Hit
	}
	return ship.takeHit()
}

// shipAt returns the fleet entry covering c. Caller holds b.mu.
func (b *Board) shipAt(c Coord) *Ship {
	for i := 0; i < b.placed; i++ {
		if b.fleet[i].Occupies(c) {
			return &b.fleet[i]
		}
	}
	return nil
}

// HasSurvivingShip reports whether any cell is still occupied and unhit
func (b *Board) HasSurvivingShip() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.grid[x][y].State == CellOccupied {
				return true
			}
		}
	}
	return false
}

// Cell returns the state of a single cell
func (b *Board) Cell(c Coord) Cell {
	if !c.InBounds() {
		return Cell{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid[c.X][c.Y]
}

// ShipsPlaced returns how many ships have been registered
func (b *Board) ShipsPlaced() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.placed
}

// CountShips returns how many ships of type t have been placed
func (b *Board) CountShips(t ShipType) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for i := 0; i < b.placed; i++ {
		if b.fleet[i].Type == t {
			n++
		}
	}
	return n
}

// ShipsSunk returns how many placed ships have been sunk
func (b *Board) ShipsSunk() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for i := 0; i < b.placed; i++ {
		if b.fleet[i].Sunk() {
			n++
		}
	}
	return n
}

// Ships returns a copy of the placed fleet
func (b *Board) Ships() []Ship {
	b.mu.Lock()
	defer b.mu.Unlock()

	ships := make([]Ship, b.placed)
	for i := 0; i < b.placed; i++ {
		ships[i] = b.fleet[i]
		ships[i].Cells = append([]Coord(nil), b.fleet[i].Cells...)
	}
	return ships
}

// String renders the grid row by row using '.' for water, the ship size
// for intact cells and 'X' for hits. It is meant for logs and tests.
func (b *Board) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			cell := b.grid[x][y]
			switch cell.State {
			case CellOccupied:
				sb.WriteByte(byte('0' + cell.Ship.Size()))
			case CellHit:
				sb.WriteByte('X')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
