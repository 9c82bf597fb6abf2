package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/command"
	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
)

// Peer is a connected player endpoint owned by a transport
type Peer interface {
	// Addr identifies the remote end in logs
	Addr() string
	// Deliver queues one line for writing without blocking. It returns
	// false when the line could not be queued.
	Deliver(line string) bool
	// Close flushes queued lines and closes the connection
	Close()
}

// Match is one two-player game together with its connected peers
type Match struct {
	ID        string
	CreatedAt time.Time

	game   *engine.Game
	interp *command.Interpreter
	store  results.Store
	log    zerolog.Logger

	// dispatch serializes command execution and delivery, so both players
	// observe the same order of messages
	dispatch sync.Mutex
	peers    [engine.MaxPlayers]Peer

	closed chan struct{}
}

func newMatch(id string, catalog *config.Catalog, store results.Store, log zerolog.Logger) *Match {
	game := engine.NewGame()
	log = log.With().Str("match", id).Logger()
	m := &Match{
		ID:        id,
		CreatedAt: time.Now(),
		game:      game,
		interp:    command.NewInterpreter(game, catalog, command.WithLogger(log)),
		store:     store,
		log:       log,
		closed:    make(chan struct{}),
	}
	go m.watch()
	return m
}

// Snapshot returns the public game state
func (m *Match) Snapshot() engine.Snapshot {
	return m.game.Snapshot()
}

// Phase returns the current phase
func (m *Match) Phase() engine.Phase {
	return m.game.Phase()
}

// Closed is closed once a finished match has recorded its result and
// closed every peer
func (m *Match) Closed() <-chan struct{} {
	return m.closed
}

// seat assigns a player slot to peer and greets it
func (m *Match) seat(peer Peer) (*Seat, error) {
	id, err := m.game.Seat()
	if err != nil {
		return nil, err
	}

	m.dispatch.Lock()
	m.peers[id-1] = peer
	m.deliver([]command.Reply{m.interp.Message(id, config.KeyConnected, config.Data{Player: id})})
	m.dispatch.Unlock()

	m.log.Info().Int("player", id).Str("addr", peer.Addr()).Msg("player seated")
	return &Seat{match: m, player: id, peer: peer}, nil
}

// deliver routes replies to peers. Caller holds m.dispatch.
func (m *Match) deliver(replies []command.Reply) {
	for _, r := range replies {
		lines := strings.Split(r.Text, "\n")
		for i, peer := range m.peers {
			if peer == nil || (r.To != engine.Broadcast && r.To != i+1) {
				continue
			}
			for _, line := range lines {
				if !peer.Deliver(line) {
					m.log.Warn().Int("player", i+1).Str("addr", peer.Addr()).Msg("peer too slow, dropping")
					m.peers[i] = nil
					peer.Close()
					break
				}
			}
		}
	}
}

// watch waits for the game to finish, then records the result and closes
// the remaining peers
func (m *Match) watch() {
	<-m.game.Done()
	defer close(m.closed)

	snap := m.game.Snapshot()
	m.record(snap)

	m.dispatch.Lock()
	peers := m.peers
	m.peers = [engine.MaxPlayers]Peer{}
	m.dispatch.Unlock()

	for _, p := range peers {
		if p != nil {
			p.Close()
		}
	}
	m.log.Info().Int("winner", snap.Winner).Msg("match finished")
}

func (m *Match) record(snap engine.Snapshot) {
	r := results.Result{
		MatchID:    m.ID,
		Outcome:    results.OutcomeAbandoned,
		Winner:     snap.Winner,
		StartedAt:  snap.StartedAt,
		FinishedAt: snap.FinishedAt,
	}
	if snap.Winner != 0 {
		r.Outcome = results.OutcomeVictory
	}

	joined := false
	for i, p := range snap.Players {
		r.Players[i] = results.PlayerResult{Name: p.Name, Shots: p.ShotsFired, ShipsLost: p.ShipsSunk}
		joined = joined || p.Joined
	}
	if !joined {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Record(ctx, r); err != nil {
		m.log.Error().Err(err).Msg("failed to record result")
	}
}

// Seat is one player's handle on a match
type Seat struct {
	match  *Match
	player int
	peer   Peer
	once   sync.Once
}

// Player returns the slot id, 1 or 2
func (s *Seat) Player() int {
	return s.player
}

// Match returns the match this seat belongs to
func (s *Seat) Match() *Match {
	return s.match
}

// Handle executes one inbound line and delivers the replies
func (s *Seat) Handle(line string) {
	m := s.match
	m.dispatch.Lock()
	defer m.dispatch.Unlock()

	// a dropped slow peer stays seated but is no longer addressed
	if m.peers[s.player-1] != s.peer {
		return
	}
	m.deliver(m.interp.Execute(s.player, line))
}

// Leave ends the player's participation. It is safe to call more than once.
func (s *Seat) Leave() {
	s.once.Do(func() {
		m := s.match
		m.dispatch.Lock()
		if m.peers[s.player-1] == s.peer {
			m.peers[s.player-1] = nil
		}
		m.deliver(m.interp.Render(m.game.Leave(s.player)))
		m.dispatch.Unlock()

		m.log.Info().Int("player", s.player).Str("addr", s.peer.Addr()).Msg("player left")
	})
}

// disconnect closes every connected peer. The transports report each
// disconnect through Seat.Leave.
func (m *Match) disconnect() {
	m.dispatch.Lock()
	peers := m.peers
	m.dispatch.Unlock()

	for _, p := range peers {
		if p != nil {
			p.Close()
		}
	}
}
