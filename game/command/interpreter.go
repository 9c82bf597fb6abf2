package command

import (
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// Reply is one outbound message. To is a player id, or engine.Broadcast
// for both players. Text may span several lines.
type Reply struct {
	To   int
	Text string
}

// Interpreter turns raw lines into engine calls and renders the outcome
// through a message catalog
type Interpreter struct {
	game    engine.Engine
	catalog *config.Catalog
	log     zerolog.Logger
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithLogger sets the logger used for command tracing
func WithLogger(l zerolog.Logger) Option {
	return func(in *Interpreter) {
		in.log = l
	}
}

// NewInterpreter creates an interpreter for one game
func NewInterpreter(game engine.Engine, catalog *config.Catalog, opts ...Option) *Interpreter {
	in := &Interpreter{
		game:    game,
		catalog: catalog,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Execute runs one line on behalf of player id. Rejections are returned as
// a single reply addressed to that player and never change game state.
func (in *Interpreter) Execute(id int, line string) []Reply {
	cmd, err := Parse(line)
	if err != nil {
		return in.reject(id, err)
	}

	var events []engine.Event
	switch cmd.Kind {
	case Empty:
		return nil
	case Join:
		events, err = in.game.Join(id, cmd.Name)
	case Pos:
		events, err = in.game.PlaceShip(id, cmd.Ship, cmd.Coord, cmd.Orientation)
	case Ready:
		events, err = in.game.Ready(id)
	case Fire:
		events, err = in.game.Fire(id, cmd.Coord)
	}
	if err != nil {
		return in.reject(id, err)
	}

	in.log.Debug().
		Int("player", id).
		Str("command", cmd.Kind.String()).
		Int("events", len(events)).
		Msg("command applied")
	return in.Render(events)
}

// Render converts engine events to replies
func (in *Interpreter) Render(events []engine.Event) []Reply {
	replies := make([]Reply, 0, len(events))
	for _, e := range events {
		key, data := in.describe(e)
		replies = append(replies, in.Message(e.To, key, data))
	}
	return replies
}

// Message renders a single catalog message addressed to to. A template
// failure falls back to the key name so the player still gets a line.
func (in *Interpreter) Message(to int, key config.Key, data config.Data) Reply {
	text, err := in.catalog.Render(key, data)
	if err != nil {
		in.log.Error().Err(err).Str("key", string(key)).Msg("message render failed")
		text = string(key)
	}
	return Reply{To: to, Text: text}
}

func (in *Interpreter) reject(id int, err error) []Reply {
	class := Classify(err)
	in.log.Debug().
		Int("player", id).
		Str("class", class.String()).
		Err(err).
		Msg("command rejected")
	if class == ClassUnknown {
		in.log.Error().Int("player", id).Err(err).Msg("unexpected engine error")
	}

	key, data := rejection(err)
	return []Reply{in.Message(id, key, data)}
}

func (in *Interpreter) describe(e engine.Event) (config.Key, config.Data) {
	x, y := e.Coord.Human()
	data := config.Data{
		Player: e.Player,
		Name:   e.Name,
		X:      x,
		Y:      y,
		Placed: e.Placed,
		Fleet:  engine.FleetSize,
	}

	switch e.Type {
	case engine.EventJoined:
		return config.KeyWelcome, data
	case engine.EventWaiting:
		return config.KeyWaiting, data
	case engine.EventSetupStarted:
		return config.KeySetupStarted, data
	case engine.EventShipPlaced:
		data.Ship = in.catalog.Ship(e.Ship.String())
		data.Orientation = e.Orientation.String()
		return config.KeyShipPlaced, data
	case engine.EventFleetComplete:
		return config.KeyFleetComplete, data
	case engine.EventPlayerReady:
		return config.KeyPlayerReady, data
	case engine.EventBattleStarted:
		return config.KeyBattleStarted, data
	case engine.EventTurn:
		return config.KeyTurn, data
	case engine.EventYourTurn:
		return config.KeyYourTurn, data
	case engine.EventWaitTurn:
		return config.KeyWaitTurn, data
	case engine.EventShot:
		data.Result = in.catalog.Result(e.Result.String())
		return config.KeyShot, data
	case engine.EventVictory:
		return config.KeyVictory, data
	case engine.EventDefeat:
		return config.KeyDefeat, data
	case engine.EventGameOver:
		return config.KeyGameOver, data
	case engine.EventPlayerLeft:
		return config.KeyPlayerLeft, data
	default:
		return config.KeyInternal, data
	}
}
