package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// Kind is the verb of a parsed command line
type Kind int

const (
	Empty Kind = iota
	Join
	Pos
	Ready
	Fire
)

func (k Kind) String() string {
	switch k {
	case Join:
		return "JOIN"
	case Pos:
		return "POS"
	case Ready:
		return "READY"
	case Fire:
		return "FIRE"
	default:
		return ""
	}
}

// Command is a validated inbound line. Coordinates are already 0-based.
type Command struct {
	Kind        Kind
	Name        string
	Ship        engine.ShipType
	Coord       engine.Coord
	Orientation engine.Orientation
}

// SyntaxError reports a malformed line. Message selects the rejection text.
type SyntaxError struct {
	Line    string
	Message config.Key
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error (%s): %q", e.Message, e.Line)
}

// Parse turns one line into a Command. Blank lines parse to an Empty
// command and are meant to be ignored.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: Empty}, nil
	}

	fail := func(key config.Key) (Command, error) {
		return Command{}, &SyntaxError{Line: line, Message: key}
	}
	args := fields[1:]

	switch strings.ToUpper(fields[0]) {
	case "JOIN":
		// names are single tokens, anything after the first is dropped
		if len(args) == 0 {
			return fail(config.KeyUsageJoin)
		}
		return Command{Kind: Join, Name: args[0]}, nil

	case "POS":
		if len(args) != 4 {
			return fail(config.KeyUsagePos)
		}
		c, key := parseCoord(args[1], args[2], config.KeyUsagePos)
		if key != "" {
			return fail(key)
		}
		ship, ok := engine.ParseShipType(args[0])
		if !ok {
			return fail(config.KeyBadShipType)
		}
		o, ok := engine.ParseOrientation(args[3])
		if !ok {
			return fail(config.KeyUsagePos)
		}
		return Command{Kind: Pos, Ship: ship, Coord: c, Orientation: o}, nil

	case "READY":
		if len(args) != 0 {
			return fail(config.KeyUsageReady)
		}
		return Command{Kind: Ready}, nil

	case "FIRE":
		if len(args) != 2 {
			return fail(config.KeyUsageFire)
		}
		c, key := parseCoord(args[0], args[1], config.KeyUsageFire)
		if key != "" {
			return fail(key)
		}
		return Command{Kind: Fire, Coord: c}, nil

	default:
		return fail(config.KeyInvalidCommand)
	}
}

// parseCoord converts a 1-based pair to a 0-based Coord. Non-numeric input
// reports usage and values outside 1..8 report KeyBadCoordinates.
func parseCoord(xs, ys string, usage config.Key) (engine.Coord, config.Key) {
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		return engine.Coord{}, usage
	}
	if x < 1 || x > engine.BoardSize || y < 1 || y > engine.BoardSize {
		return engine.Coord{}, config.KeyBadCoordinates
	}
	return engine.Coord{X: x - 1, Y: y - 1}, ""
}
