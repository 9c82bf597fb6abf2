package engine

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Engine provides the session operations driven by connection handlers
type Engine interface {
	// Seating and lifecycle
	Seat() (int, error)
	Leave(id int) []Event
	Done() <-chan struct{}

	// Commands
	Join(id int, name string) ([]Event, error)
	PlaceShip(id int, t ShipType, origin Coord, o Orientation) ([]Event, error)
	Ready(id int) ([]Event, error)
	Fire(id int, target Coord) ([]Event, error)

	// State
	Phase() Phase
	Snapshot() Snapshot
}

// Game is the shared two-player session. mu serializes every read and write
// of phase, readiness and turn flags; board contents additionally go through
// each Board's own lock, always acquired after mu.
type Game struct {
	mu      sync.Mutex
	players [MaxPlayers]*Player
	seated  int
	active  int
	phase   Phase
	winner  int

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

var _ Engine = (*Game)(nil)

// Snapshot is a consistent copy of the session's public state
type Snapshot struct {
	Phase      Phase          `json:"phase"`
	Started    bool           `json:"started"`
	Over       bool           `json:"over"`
	Active     int            `json:"active_players"`
	Winner     int            `json:"winner,omitempty"`
	Players    []PlayerStatus `json:"players"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
}

// NewGame creates an empty session in the lobby
func NewGame() *Game {
	return &Game{
		phase:     Lobby,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Seat assigns the next free player slot. Slots are never reused, so a
// session sees at most two players over its lifetime.
func (g *Game) Seat() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == Finished {
		return 0, ErrGameOver
	}
	if g.seated >= MaxPlayers {
		return 0, ErrSessionFull
	}
	p := newPlayer(g.seated + 1)
	g.players[g.seated] = p
	g.seated++
	g.active++
	return p.ID, nil
}

// Join registers the player's name. The session moves to Setup as soon as
// both slots have joined, whichever side observes it.
func (g *Game) Join(id int, name string) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.player(id)
	if err != nil {
		return nil, err
	}
	if g.phase == Finished {
		return nil, ErrGameOver
	}
	if p.joined {
		return nil, ErrAlreadyJoined
	}
	name = normalizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p.Name = name
	p.joined = true
	events := []Event{direct(p.ID, Event{Type: EventJoined, Player: p.ID, Name: p.Name})}

	if g.bothJoined() {
		g.phase = Setup
		events = append(events, broadcast(Event{Type: EventSetupStarted}))
	} else {
		events = append(events, direct(p.ID, Event{Type: EventWaiting, Player: p.ID, Name: p.Name}))
	}
	return events, nil
}

// PlaceShip places one ship on the caller's own board
func (g *Game) PlaceShip(id int, t ShipType, origin Coord, o Orientation) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.joinedPlayer(id)
	if err != nil {
		return nil, err
	}
	switch g.phase {
	case Lobby:
		return nil, ErrSetupNotStarted
	case Battle:
		return nil, ErrGameStarted
	}
	if p.ready {
		return nil, ErrAlreadyReady
	}
	if err := checkRoster(p, t); err != nil {
		return nil, err
	}
	if _, err := p.Board.Place(t, origin, o); err != nil {
		return nil, err
	}

	placed := p.Board.ShipsPlaced()
	events := []Event{direct(p.ID, Event{
		Type:        EventShipPlaced,
		Player:      p.ID,
		Name:        p.Name,
		Ship:        t,
		Coord:       origin,
		Orientation: o,
		Placed:      placed,
	})}
	if placed == FleetSize {
		events = append(events, direct(p.ID, Event{Type: EventFleetComplete, Player: p.ID, Name: p.Name, Placed: placed}))
	}
	return events, nil
}

// Ready latches the caller's readiness and starts the battle when the other
// player is already ready. The first player to ready does not wait.
func (g *Game) Ready(id int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.joinedPlayer(id)
	if err != nil {
		return nil, err
	}
	switch g.phase {
	case Lobby:
		return nil, ErrSetupNotStarted
	case Battle:
		return nil, ErrAlreadyReady
	}
	if p.ready {
		return nil, ErrAlreadyReady
	}
	if !fleetComplete(p) {
		return nil, &FleetIncompleteError{Placed: p.Board.ShipsPlaced()}
	}

	p.ready = true
	events := []Event{broadcast(Event{Type: EventPlayerReady, Player: p.ID, Name: p.Name})}

	if g.bothReady() {
		first, second := g.players[0], g.players[1]
		g.phase = Battle
		g.startedAt = time.Now()
		first.hasTurn = true
		second.hasTurn = false
		events = append(events, broadcast(Event{Type: EventBattleStarted}))
		events = append(events, turnEvents(first, second)...)
	}
	return events, nil
}

// Fire resolves the caller's shot against the opponent's board, then checks
// for a winner and otherwise passes the turn.
func (g *Game) Fire(id int, target Coord) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.joinedPlayer(id)
	if err != nil {
		return nil, err
	}
	switch g.phase {
	case Lobby, Setup:
		return nil, ErrBattleNotStarted
	}
	opp := g.opponent(p)
	if !p.hasTurn {
		return nil, &NotYourTurnError{Holder: opp.ID, HolderName: opp.Name}
	}
	if !target.InBounds() {
		return nil, ErrOutOfRange
	}

	result := resolveFire(p, opp, target)
	events := []Event{broadcast(Event{
		Type:   EventShot,
		Player: p.ID,
		Name:   p.Name,
		Coord:  target,
		Result: result,
	})}

	if winner, loser, ok := detectWinner(g.players); ok {
		g.winner = winner.ID
		winner.hasTurn = false
		loser.hasTurn = false
		events = append(events,
			direct(winner.ID, Event{Type: EventVictory, Player: winner.ID, Name: winner.Name}),
			direct(loser.ID, Event{Type: EventDefeat, Player: loser.ID, Name: loser.Name}),
			broadcast(Event{Type: EventGameOver, Player: winner.ID, Name: winner.Name}),
		)
		g.finish()
		return events, nil
	}

	passTurn(p, opp)
	events = append(events, turnEvents(opp, p)...)
	return events, nil
}

// Leave ends a player's participation. When no player remains active the
// session is finished regardless of board state.
func (g *Game) Leave(id int) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.player(id)
	if err != nil || !p.active {
		return nil
	}
	p.active = false
	g.active--

	if g.active <= 0 {
		g.finish()
		return nil
	}
	if g.phase == Finished {
		return nil
	}

	var events []Event
	if other := g.opponent(p); other != nil && other.active {
		events = append(events, direct(other.ID, Event{Type: EventPlayerLeft, Player: p.ID, Name: p.Name}))
	}
	return events
}

// Done is closed once the session reaches Finished
func (g *Game) Done() <-chan struct{} {
	return g.done
}

// Phase returns the current phase
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Started reports whether the battle has begun
func (g *Game) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.startedAt.IsZero()
}

// Over reports whether the session is finished
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase == Finished
}

// Snapshot returns the public session state
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Phase:      g.phase,
		Started:    !g.startedAt.IsZero(),
		Over:       g.phase == Finished,
		Active:     g.active,
		Winner:     g.winner,
		Players:    make([]PlayerStatus, 0, g.seated),
		CreatedAt:  g.createdAt,
		StartedAt:  g.startedAt,
		FinishedAt: g.finishedAt,
	}
	for i := 0; i < g.seated; i++ {
		s.Players = append(s.Players, g.players[i].status())
	}
	return s
}

// Board returns the board owned by player id, for inspection in tools and tests
func (g *Game) Board(id int) (*Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.player(id)
	if err != nil {
		return nil, err
	}
	return p.Board, nil
}

// finish moves to Finished and signals Done. Caller holds g.mu.
func (g *Game) finish() {
	if g.phase != Finished {
		g.phase = Finished
		g.finishedAt = time.Now()
	}
	g.doneOnce.Do(func() { close(g.done) })
}

func (g *Game) player(id int) (*Player, error) {
	if id < 1 || id > g.seated {
		return nil, ErrUnknownPlayer
	}
	return g.players[id-1], nil
}

// joinedPlayer resolves id and applies the checks shared by every command
// issued after JOIN. Caller holds g.mu.
func (g *Game) joinedPlayer(id int) (*Player, error) {
	p, err := g.player(id)
	if err != nil {
		return nil, err
	}
	if g.phase == Finished {
		return nil, ErrGameOver
	}
	if !p.joined {
		return nil, ErrNotJoined
	}
	return p, nil
}

func (g *Game) opponent(p *Player) *Player {
	if p.ID == 1 {
		return g.players[1]
	}
	return g.players[0]
}

func (g *Game) bothJoined() bool {
	return g.seated == MaxPlayers && g.players[0].joined && g.players[1].joined
}

func (g *Game) bothReady() bool {
	return g.seated == MaxPlayers && g.players[0].ready && g.players[1].ready
}

// normalizeName keeps the first whitespace-separated token, truncated to
// MaxNameLen-1 runes.
func normalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	name = fields[0]
	if utf8.RuneCountInString(name) >= MaxNameLen {
		runes := []rune(name)
		name = string(runes[:MaxNameLen-1])
	}
	return name
}
