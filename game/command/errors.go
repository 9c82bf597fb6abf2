package command

import (
	"errors"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// Class groups rejections by what went wrong
type Class int

const (
	ClassUnknown Class = iota
	ClassProtocol
	ClassPhase
	ClassRule
)

func (c Class) String() string {
	switch c {
	case ClassProtocol:
		return "protocol"
	case ClassPhase:
		return "phase"
	case ClassRule:
		return "rule"
	default:
		return "unknown"
	}
}

var phaseErrors = []error{
	engine.ErrSessionFull,
	engine.ErrUnknownPlayer,
	engine.ErrAlreadyJoined,
	engine.ErrNotJoined,
	engine.ErrSetupNotStarted,
	engine.ErrGameStarted,
	engine.ErrBattleNotStarted,
	engine.ErrGameOver,
}

var ruleErrors = []error{
	engine.ErrInvalidName,
	engine.ErrInvalidShipType,
	engine.ErrAlreadyReady,
	engine.ErrShipLimit,
	engine.ErrInvalidPlacement,
	engine.ErrFleetFull,
	engine.ErrNotYourTurn,
	engine.ErrOutOfRange,
}

// Classify reports the class of a rejection returned by Parse or the engine
func Classify(err error) Class {
	var syntax *SyntaxError
	if errors.As(err, &syntax) {
		return ClassProtocol
	}
	var incomplete *engine.FleetIncompleteError
	if errors.As(err, &incomplete) {
		return ClassRule
	}
	for _, target := range phaseErrors {
		if errors.Is(err, target) {
			return ClassPhase
		}
	}
	for _, target := range ruleErrors {
		if errors.Is(err, target) {
			return ClassRule
		}
	}
	return ClassUnknown
}

// rejection picks the catalog message and template data for err
func rejection(err error) (config.Key, config.Data) {
	var (
		syntax     *SyntaxError
		incomplete *engine.FleetIncompleteError
		notTurn    *engine.NotYourTurnError
	)
	switch {
	case errors.As(err, &syntax):
		return syntax.Message, config.Data{}
	case errors.As(err, &incomplete):
		return config.KeyFleetIncomplete, config.Data{Placed: incomplete.Placed, Fleet: engine.FleetSize}
	case errors.As(err, &notTurn):
		return config.KeyNotYourTurn, config.Data{Player: notTurn.Holder, Name: notTurn.HolderName}
	}

	switch {
	case errors.Is(err, engine.ErrSessionFull):
		return config.KeyServerFull, config.Data{}
	case errors.Is(err, engine.ErrAlreadyJoined):
		return config.KeyAlreadyJoined, config.Data{}
	case errors.Is(err, engine.ErrNotJoined):
		return config.KeyNotJoined, config.Data{}
	case errors.Is(err, engine.ErrSetupNotStarted):
		return config.KeySetupNotStarted, config.Data{}
	case errors.Is(err, engine.ErrGameStarted):
		return config.KeyGameStarted, config.Data{}
	case errors.Is(err, engine.ErrBattleNotStarted):
		return config.KeyBattleNotStarted, config.Data{}
	case errors.Is(err, engine.ErrGameOver):
		return config.KeyGameIsOver, config.Data{}
	case errors.Is(err, engine.ErrInvalidName):
		return config.KeyInvalidName, config.Data{}
	case errors.Is(err, engine.ErrInvalidShipType):
		return config.KeyBadShipType, config.Data{}
	case errors.Is(err, engine.ErrAlreadyReady):
		return config.KeyAlreadyReady, config.Data{}
	case errors.Is(err, engine.ErrShipLimit), errors.Is(err, engine.ErrFleetFull):
		return config.KeyShipLimit, config.Data{}
	case errors.Is(err, engine.ErrInvalidPlacement):
		return config.KeyInvalidPlacement, config.Data{}
	case errors.Is(err, engine.ErrOutOfRange):
		return config.KeyBadCoordinates, config.Data{}
	default:
		return config.KeyInternal, config.Data{}
	}
}
