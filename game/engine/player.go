package engine

// Player is one participant's identity, board and session flags. Flags are
// read and written under the owning Game's mutex.
type Player struct {
	ID    int
	Name  string
	Board *Board

	joined  bool
	ready   bool
	hasTurn bool
	active  bool
	shots   int
}

func newPlayer(id int) *Player {
	return &Player{
		ID:     id,
		Board:  NewBoard(),
		active: true,
	}
}

// PlayerStatus is a point-in-time copy of a player's public state. Board
// contents are deliberately absent.
type PlayerStatus struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	Joined      bool   `json:"joined"`
	Ready       bool   `json:"ready"`
	HasTurn     bool   `json:"has_turn"`
	Connected   bool   `json:"connected"`
	ShipsPlaced int    `json:"ships_placed"`
	ShipsSunk   int    `json:"ships_sunk"`
	ShotsFired  int    `json:"shots_fired"`
}

func (p *Player) status() PlayerStatus {
	return PlayerStatus{
		ID:          p.ID,
		Name:        p.Name,
		Joined:      p.joined,
		Ready:       p.ready,
		HasTurn:     p.hasTurn,
		Connected:   p.active,
		ShipsPlaced: p.Board.ShipsPlaced(),
		ShipsSunk:   p.Board.ShipsSunk(),
		ShotsFired:  p.shots,
	}
}
