package config

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/go-playground/validator/v10"
)

// Key names one outbound message class
type Key string

const (
	// Lifecycle
	KeyConnected     Key = "connected"
	KeyServerFull    Key = "server_full"
	KeyWelcome       Key = "welcome"
	KeyWaiting       Key = "waiting"
	KeySetupStarted  Key = "setup_started"
	KeyShipPlaced    Key = "ship_placed"
	KeyFleetComplete Key = "fleet_complete"
	KeyPlayerReady   Key = "player_ready"
	KeyBattleStarted Key = "battle_started"
	KeyTurn          Key = "turn"
	KeyYourTurn      Key = "your_turn"
	KeyWaitTurn      Key = "wait_turn"
	KeyShot          Key = "shot"
	KeyVictory       Key = "victory"
	KeyDefeat        Key = "defeat"
	KeyGameOver      Key = "game_over"
	KeyPlayerLeft    Key = "player_left"

	// Protocol errors
	KeyInvalidCommand Key = "invalid_command"
	KeyUsageJoin      Key = "usage_join"
	KeyUsagePos       Key = "usage_pos"
	KeyUsageReady     Key = "usage_ready"
	KeyUsageFire      Key = "usage_fire"
	KeyBadCoordinates Key = "bad_coordinates"
	KeyBadShipType    Key = "bad_ship_type"

	// Phase errors and rule violations
	KeyNotJoined        Key = "not_joined"
	KeyAlreadyJoined    Key = "already_joined"
	KeyInvalidName      Key = "invalid_name"
	KeySetupNotStarted  Key = "setup_not_started"
	KeyGameStarted      Key = "game_started"
	KeyBattleNotStarted Key = "battle_not_started"
	KeyGameIsOver       Key = "game_is_over"
	KeyAlreadyReady     Key = "already_ready"
	KeyFleetIncomplete  Key = "fleet_incomplete"
	KeyShipLimit        Key = "ship_limit"
	KeyInvalidPlacement Key = "invalid_placement"
	KeyNotYourTurn      Key = "not_your_turn"
	KeyInternal         Key = "internal"
)

// Messages holds the lifecycle and broadcast templates
type Messages struct {
	Connected     string `json:"connected" validate:"required"`
	ServerFull    string `json:"server_full" validate:"required"`
	Welcome       string `json:"welcome" validate:"required"`
	Waiting       string `json:"waiting" validate:"required"`
	SetupStarted  string `json:"setup_started" validate:"required"`
	ShipPlaced    string `json:"ship_placed" validate:"required"`
	FleetComplete string `json:"fleet_complete" validate:"required"`
	PlayerReady   string `json:"player_ready" validate:"required"`
	BattleStarted string `json:"battle_started" validate:"required"`
	Turn          string `json:"turn" validate:"required"`
	YourTurn      string `json:"your_turn" validate:"required"`
	WaitTurn      string `json:"wait_turn" validate:"required"`
	Shot          string `json:"shot" validate:"required"`
	Victory       string `json:"victory" validate:"required"`
	Defeat        string `json:"defeat" validate:"required"`
	GameOver      string `json:"game_over" validate:"required"`
	PlayerLeft    string `json:"player_left" validate:"required"`
}

// Errors holds the rejection templates sent back to the offending player
type Errors struct {
	InvalidCommand   string `json:"invalid_command" validate:"required"`
	UsageJoin        string `json:"usage_join" validate:"required"`
	UsagePos         string `json:"usage_pos" validate:"required"`
	UsageReady       string `json:"usage_ready" validate:"required"`
	UsageFire        string `json:"usage_fire" validate:"required"`
	BadCoordinates   string `json:"bad_coordinates" validate:"required"`
	BadShipType      string `json:"bad_ship_type" validate:"required"`
	NotJoined        string `json:"not_joined" validate:"required"`
	AlreadyJoined    string `json:"already_joined" validate:"required"`
	InvalidName      string `json:"invalid_name" validate:"required"`
	SetupNotStarted  string `json:"setup_not_started" validate:"required"`
	GameStarted      string `json:"game_started" validate:"required"`
	BattleNotStarted string `json:"battle_not_started" validate:"required"`
	GameIsOver       string `json:"game_is_over" validate:"required"`
	AlreadyReady     string `json:"already_ready" validate:"required"`
	FleetIncomplete  string `json:"fleet_incomplete" validate:"required"`
	ShipLimit        string `json:"ship_limit" validate:"required"`
	InvalidPlacement string `json:"invalid_placement" validate:"required"`
	NotYourTurn      string `json:"not_your_turn" validate:"required"`
	Internal         string `json:"internal" validate:"required"`
}

// Results names the three shot outcomes as shown to players
type Results struct {
	Miss string `json:"miss" validate:"required"`
	Hit  string `json:"hit" validate:"required"`
	Sunk string `json:"sunk" validate:"required"`
}

// Ships names the vessel classes as shown to players
type Ships struct {
	Submarine string `json:"submarine" validate:"required"`
	Frigate   string `json:"frigate" validate:"required"`
	Destroyer string `json:"destroyer" validate:"required"`
}

// Catalog is a named set of message templates. Templates use text/template
// syntax and receive a Data value.
type Catalog struct {
	Name        string   `json:"name" validate:"required,max=64"`
	Description string   `json:"description" validate:"max=256"`
	Messages    Messages `json:"messages" validate:"required"`
	Errors      Errors   `json:"errors" validate:"required"`
	Results     Results  `json:"results" validate:"required"`
	Ships       Ships    `json:"ships" validate:"required"`

	templates map[Key]*template.Template
}

// Data is the value every template is executed with
type Data struct {
	Player      int
	Name        string
	Ship        string
	X           int
	Y           int
	Orientation string
	Result      string
	Placed      int
	Fleet       int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// sources maps every key to its template text
func (c *Catalog) sources() map[Key]string {
	m, e := &c.Messages, &c.Errors
	return map[Key]string{
		KeyConnected:     m.Connected,
		KeyServerFull:    m.ServerFull,
		KeyWelcome:       m.Welcome,
		KeyWaiting:       m.Waiting,
		KeySetupStarted:  m.SetupStarted,
		KeyShipPlaced:    m.ShipPlaced,
		KeyFleetComplete: m.FleetComplete,
		KeyPlayerReady:   m.PlayerReady,
		KeyBattleStarted: m.BattleStarted,
		KeyTurn:          m.Turn,
		KeyYourTurn:      m.YourTurn,
		KeyWaitTurn:      m.WaitTurn,
		KeyShot:          m.Shot,
		KeyVictory:       m.Victory,
		KeyDefeat:        m.Defeat,
		KeyGameOver:      m.GameOver,
		KeyPlayerLeft:    m.PlayerLeft,

		KeyInvalidCommand:   e.InvalidCommand,
		KeyUsageJoin:        e.UsageJoin,
		KeyUsagePos:         e.UsagePos,
		KeyUsageReady:       e.UsageReady,
		KeyUsageFire:        e.UsageFire,
		KeyBadCoordinates:   e.BadCoordinates,
		KeyBadShipType:      e.BadShipType,
		KeyNotJoined:        e.NotJoined,
		KeyAlreadyJoined:    e.AlreadyJoined,
		KeyInvalidName:      e.InvalidName,
		KeySetupNotStarted:  e.SetupNotStarted,
		KeyGameStarted:      e.GameStarted,
		KeyBattleNotStarted: e.BattleNotStarted,
		KeyGameIsOver:       e.GameIsOver,
		KeyAlreadyReady:     e.AlreadyReady,
		KeyFleetIncomplete:  e.FleetIncomplete,
		KeyShipLimit:        e.ShipLimit,
		KeyInvalidPlacement: e.InvalidPlacement,
		KeyNotYourTurn:      e.NotYourTurn,
		KeyInternal:         e.Internal,
	}
}

// Validate checks required fields and compiles every template. A catalog
// must validate before Render can be used.
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	templates := make(map[Key]*template.Template)
	for key, src := range c.sources() {
		tmpl, err := template.New(string(key)).Option("missingkey=error").Parse(src)
		if err != nil {
			return fmt.Errorf("%w: message %q: %v", ErrInvalidCatalog, key, err)
		}
		// execute once against sample data so field typos fail at load time
		if err := tmpl.Execute(&bytes.Buffer{}, sampleData); err != nil {
			return fmt.Errorf("%w: message %q: %v", ErrInvalidCatalog, key, err)
		}
		templates[key] = tmpl
	}
	c.templates = templates
	return nil
}

var sampleData = Data{
	Player: 1, Name: "player", Ship: "FRIGATE", X: 1, Y: 1,
	Orientation: "H", Result: "HIT", Placed: 1, Fleet: 4,
}

// Render executes the template for key
func (c *Catalog) Render(key Key, data Data) (string, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMessage, key)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	return buf.String(), nil
}

// Result returns the display word for a shot outcome name (miss, hit, sunk)
func (c *Catalog) Result(name string) string {
	switch name {
	case "hit":
		return c.Results.Hit
	case "sunk":
		return c.Results.Sunk
	default:
		return c.Results.Miss
	}
}

// Ship returns the display name for a vessel class name (SUBMARINE,
// FRIGATE, DESTROYER). Unknown names are returned unchanged.
func (c *Catalog) Ship(name string) string {
	switch name {
	case "SUBMARINE":
		return c.Ships.Submarine
	case "FRIGATE":
		return c.Ships.Frigate
	case "DESTROYER":
		return c.Ships.Destroyer
	default:
		return name
	}
}

// Keys returns every message key a catalog defines
func Keys() []Key {
	var c Catalog
	keys := make([]Key, 0, len(c.sources()))
	for k := range c.sources() {
		keys = append(keys, k)
	}
	return keys
}
