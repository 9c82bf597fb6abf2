package engine

// EventType names a state change the engine wants announced
type EventType string

const (
	EventJoined        EventType = "joined"
	EventWaiting       EventType = "waiting_opponent"
	EventSetupStarted  EventType = "setup_started"
	EventShipPlaced    EventType = "ship_placed"
	EventFleetComplete EventType = "fleet_complete"
	EventPlayerReady   EventType = "player_ready"
	EventBattleStarted EventType = "battle_started"
	EventTurn          EventType = "turn"
	EventYourTurn      EventType = "your_turn"
	EventWaitTurn      EventType = "wait_turn"
	EventShot          EventType = "shot"
	EventVictory       EventType = "victory"
	EventDefeat        EventType = "defeat"
	EventGameOver      EventType = "game_over"
	EventPlayerLeft    EventType = "player_left"
)

// Broadcast is the Event.To value addressing both players
const Broadcast = 0

// Event is a single announcement produced by a state transition. Player and
// Name identify the subject (the joiner, the shooter, the turn holder, the
// winner...), which is not necessarily the recipient.
type Event struct {
	Type        EventType
	To          int
	Player      int
	Name        string
	Ship        ShipType
	Coord       Coord
	Orientation Orientation
	Result      ShotResult
	Placed      int
}

func direct(to int, e Event) Event {
	e.To = to
	return e
}

func broadcast(e Event) Event {
	e.To = Broadcast
	return e
}
