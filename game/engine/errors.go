package engine

import (
	"errors"
	"fmt"
)

// Phase errors: the command is well formed but not legal right now.
var (
	ErrSessionFull      = errors.New("session already has two players")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotJoined        = errors.New("player has not joined")
	ErrSetupNotStarted  = errors.New("placement phase has not started")
	ErrGameStarted      = errors.New("battle already started")
	ErrBattleNotStarted = errors.New("battle has not started")
	ErrGameOver         = errors.New("game is over")
)

// Rule violations: legal phase, illegal move.
var (
	ErrInvalidName      = errors.New("invalid player name")
	ErrInvalidShipType  = errors.New("invalid ship type")
	ErrAlreadyReady     = errors.New("player already ready")
	ErrShipLimit        = errors.New("ship type limit reached")
	ErrInvalidPlacement = errors.New("invalid or occupied position")
	ErrFleetFull        = errors.New("fleet already complete")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrOutOfRange       = errors.New("coordinate out of range")
)

// FleetIncompleteError is returned by READY before all ships are placed
type FleetIncompleteError struct {
	Placed int
}

func (e *FleetIncompleteError) Error() string {
	return fmt.Sprintf("positioning incomplete: %d/%d ships placed", e.Placed, FleetSize)
}

// NotYourTurnError names the player currently holding the turn
type NotYourTurnError struct {
	Holder     int
	HolderName string
}

func (e *NotYourTurnError) Error() string {
	return fmt.Sprintf("not your turn: waiting for player %d (%s)", e.Holder, e.HolderName)
}

// Is lets errors.Is(err, ErrNotYourTurn) match the typed error
func (e *NotYourTurnError) Is(target error) bool {
	return target == ErrNotYourTurn
}
