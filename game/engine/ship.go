package engine

// Ship is a placed vessel. It is created on a successful placement and only
// mutated by shot resolution on the owning board.
type Ship struct {
	Type  ShipType `json:"type"`
	Cells []Coord  `json:"cells"`
	Hits  int      `json:"hits"`
}

// shipCells returns the cells a ship of type t would occupy from origin
func shipCells(t ShipType, origin Coord, o Orientation) []Coord {
	cells := make([]Coord, t.Size())
	for i := range cells {
		cells[i] = origin.Step(o, i)
	}
	return cells
}

// Size returns the ship length
func (s *Ship) Size() int {
	return s.Type.Size()
}

// Sunk reports whether every cell of the ship has been hit
func (s *Ship) Sunk() bool {
	return s.Hits == s.Size()
}

// Occupies reports whether c is one of the ship's cells
func (s *Ship) Occupies(c Coord) bool {
	for _, cell := range s.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

// takeHit records one hit and reports whether it sank the ship
func (s *Ship) takeHit() ShotResult {
	if s.Hits < s.Size() {
		s.Hits++
	}
	if s.Sunk() {
		return Sunk
	}
	return Hit
}
