package main

import (
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// shotState is what the bot knows about one cell of the enemy board
type shotState int

const (
	unknown shotState = iota
	missed
	hit
	sunk
)

// SystematicStrategy picks targets on the enemy board. It hunts on a
// checkerboard pattern and, after a hit, works through the neighbors of the
// hit cell before hunting again. A cell is never fired at twice.
type SystematicStrategy struct {
	grid    [engine.BoardSize][engine.BoardSize]shotState
	targets []engine.Coord // LIFO, most recent hit's neighbors first
	fired   int
}

// NewSystematicStrategy creates a strategy for a fresh enemy board
func NewSystematicStrategy() *SystematicStrategy {
	return &SystematicStrategy{}
}

// NextShot returns the next cell to fire at. It returns false once every
// cell has been fired at.
func (s *SystematicStrategy) NextShot() (engine.Coord, bool) {
	for len(s.targets) > 0 {
		c := s.targets[len(s.targets)-1]
		s.targets = s.targets[:len(s.targets)-1]
		if s.grid[c.X][c.Y] == unknown {
			return c, true
		}
	}
	return s.hunt()
}

// hunt scans the checkerboard cells first. Submarines occupy a single cell,
// so the remaining cells are scanned once the pattern is exhausted.
func (s *SystematicStrategy) hunt() (engine.Coord, bool) {
	for parity := 0; parity < 2; parity++ {
		for x := 0; x < engine.BoardSize; x++ {
			for y := 0; y < engine.BoardSize; y++ {
				if (x+y)%2 == parity && s.grid[x][y] == unknown {
					return engine.Coord{X: x, Y: y}, true
				}
			}
		}
	}
	return engine.Coord{}, false
}

// Record stores the outcome of a shot fired at c
func (s *SystematicStrategy) Record(c engine.Coord, result engine.ShotResult) {
	if !c.InBounds() {
		return
	}
	if s.grid[c.X][c.Y] == unknown {
		s.fired++
	}

	switch result {
	case engine.Sunk:
		s.grid[c.X][c.Y] = sunk
	case engine.Hit:
		s.grid[c.X][c.Y] = hit
		for _, n := range neighbors(c) {
			if s.grid[n.X][n.Y] == unknown {
				s.targets = append(s.targets, n)
			}
		}
	default:
		s.grid[c.X][c.Y] = missed
	}
}

// Fired returns the number of distinct cells fired at
func (s *SystematicStrategy) Fired() int {
	return s.fired
}

// Reset forgets everything about the enemy board
func (s *SystematicStrategy) Reset() {
	*s = SystematicStrategy{}
}

func neighbors(c engine.Coord) []engine.Coord {
	var out []engine.Coord
	for _, o := range []engine.Orientation{engine.Horizontal, engine.Vertical} {
		for _, d := range []int{-1, 1} {
			if n := c.Step(o, d); n.InBounds() {
				out = append(out, n)
			}
		}
	}
	return out
}
