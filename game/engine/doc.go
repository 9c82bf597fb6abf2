// Package engine provides the core rules of a two-player naval battle.
//
// The engine package implements:
//   - Board placement and shot resolution on an 8x8 grid
//   - The per-type fleet roster (1 submarine, 2 frigates, 1 destroyer)
//   - The session state machine Lobby -> Setup -> Battle -> Finished
//   - Turn alternation and win detection
//
// Core Types:
//
// Game is the shared session owned by the two connection handlers. Every
// command method takes the acting player's slot id and returns the list of
// Events to announce, or an error when the command is rejected. Rejected
// commands never mutate state.
//
// Board holds one player's grid and fleet behind its own mutex so that
// placement, shot resolution and the surviving-ship scan are atomic.
//
// Concurrency:
//
// Game methods acquire the session mutex first and then at most one Board
// mutex. Phase transitions that depend on both players ("both joined",
// "both ready") are re-checked by whichever caller updates its own flag, so
// nobody ever waits on the other player. Done returns a channel that is
// closed once the session finishes.
//
// Usage:
//
//	game := engine.NewGame()
//	id, err := game.Seat()
//	if err != nil {
//		return err
//	}
//
//	events, err := game.Join(id, "alice")
//	events, err = game.PlaceShip(id, engine.Frigate, engine.Coord{X: 0, Y: 0}, engine.Horizontal)
//	events, err = game.Ready(id)
//	events, err = game.Fire(id, engine.Coord{X: 3, Y: 4})
//
// Coordinates are 0-based. Horizontal ships extend along Y and vertical
// ships along X.
package engine
