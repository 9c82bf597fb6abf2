package engine

import (
	"fmt"
	"strings"
)

const (
	// Board and roster dimensions
	BoardSize  = 8
	MaxPlayers = 2
	FleetSize  = 4 // 1 submarine + 2 frigates + 1 destroyer
	MaxNameLen = 32
)

// ShipType identifies a vessel class. Its value is also its length in cells.
type ShipType int

const (
	Submarine ShipType = 1
	Frigate   ShipType = 2
	Destroyer ShipType = 3
)

// ShipTypes lists every vessel class in roster order
var ShipTypes = []ShipType{Submarine, Frigate, Destroyer}

// Size returns the number of cells a ship of this type occupies
func (t ShipType) Size() int {
	return int(t)
}

// Limit returns the roster cap for this type
func (t ShipType) Limit() int {
	switch t {
	case Submarine, Destroyer:
		return 1
	case Frigate:
		return 2
	default:
		return 0
	}
}

// Valid reports whether t is a known vessel class
func (t ShipType) Valid() bool {
	return t >= Submarine && t <= Destroyer
}

func (t ShipType) String() string {
	switch t {
	case Submarine:
		return "SUBMARINE"
	case Frigate:
		return "FRIGATE"
	case Destroyer:
		return "DESTROYER"
	default:
		return fmt.Sprintf("ShipType(%d)", int(t))
	}
}

// ParseShipType converts a command token into a ShipType. Both the English
// names and the Portuguese protocol names (SUBMARINO, FRAGATA) are accepted.
func ParseShipType(s string) (ShipType, bool) {
	switch strings.ToUpper(s) {
	case "SUBMARINE", "SUBMARINO":
		return Submarine, true
	case "FRIGATE", "FRAGATA":
		return Frigate, true
	case "DESTROYER":
		return Destroyer, true
	default:
		return 0, false
	}
}

// Orientation is the axis a ship extends along from its origin
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "V"
	}
	return "H"
}

// ParseOrientation accepts H or V in either case
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToUpper(s) {
	case "H":
		return Horizontal, true
	case "V":
		return Vertical, true
	default:
		return 0, false
	}
}

// Coord is a 0-based board coordinate
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the coordinate lies on an 8x8 board
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// Human returns the 1-based coordinate shown to players
func (c Coord) Human() (int, int) {
	return c.X + 1, c.Y + 1
}

// Step returns the coordinate i cells away along o.
// Horizontal advances Y and vertical advances X.
func (c Coord) Step(o Orientation, i int) Coord {
	if o == Vertical {
		return Coord{X: c.X + i, Y: c.Y}
	}
	return Coord{X: c.X, Y: c.Y + i}
}

// CellState is the tag of a board cell
type CellState int

const (
	CellEmpty CellState = iota
	CellOccupied
	CellHit
)

func (s CellState) String() string {
	switch s {
	case CellOccupied:
		return "occupied"
	case CellHit:
		return "hit"
	default:
		return "empty"
	}
}

// Cell is a tagged board cell. Ship is meaningful only when State is
// CellOccupied or CellHit.
type Cell struct {
	State CellState `json:"state"`
	Ship  ShipType  `json:"ship,omitempty"`
}

// ShotResult is the outcome of a single FIRE
type ShotResult int

const (
	Miss ShotResult = iota
	Hit
	Sunk
)

func (r ShotResult) String() string {
	switch r {
	case Hit:
		return "hit"
	case Sunk:
		return "sunk"
	default:
		return "miss"
	}
}

// Phase is the session-wide stage gating which commands are legal
type Phase int

const (
	Lobby Phase = iota
	Setup
	Battle
	Finished
)

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Battle:
		return "battle"
	case Finished:
		return "finished"
	default:
		return "lobby"
	}
}

// MarshalText renders the phase name in JSON payloads
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name produced by MarshalText
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{Lobby, Setup, Battle, Finished} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
