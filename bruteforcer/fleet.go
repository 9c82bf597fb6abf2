package main

import (
	"fmt"
	"math/rand"

	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// randomFleet returns POS commands for a legal, randomly placed fleet. The
// placements are checked against a scratch board using the server's rules.
func randomFleet(rng *rand.Rand) []string {
	board := engine.NewBoard()
	var lines []string

	for _, t := range engine.ShipTypes {
		for n := 0; n < t.Limit(); n++ {
			for {
				origin := engine.Coord{X: rng.Intn(engine.BoardSize), Y: rng.Intn(engine.BoardSize)}
				o := engine.Orientation(rng.Intn(2))
				if _, err := board.Place(t, origin, o); err != nil {
					continue
				}
				x, y := origin.Human()
				lines = append(lines, fmt.Sprintf("POS %s %d %d %s", t, x, y, o))
				break
			}
		}
	}
	return lines
}
