package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
)

var (
	ErrServerFull    = errors.New("server full")
	ErrMatchNotFound = errors.New("match not found")
	ErrShutdown      = errors.New("session manager shut down")
)

// Manager pairs incoming peers into matches and tracks their lifecycle
type Manager struct {
	catalog    *config.Catalog
	store      results.Store
	log        zerolog.Logger
	maxMatches int

	matches  map[string]*Match
	shutdown bool
	mu       sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxMatches bounds the number of unfinished matches
func WithMaxMatches(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxMatches = n
		}
	}
}

// WithResults sets the ledger finished matches are recorded to
func WithResults(store results.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a new session manager. By default a single match is
// hosted and results are kept in memory.
func NewManager(catalog *config.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:    catalog,
		store:      results.NewMemoryStore(),
		log:        zerolog.Nop(),
		maxMatches: 1,
		matches:    make(map[string]*Match),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach seats peer in the newest match waiting for players, creating a
// match when there is none and capacity allows. A rejected peer receives
// the server full notice and is closed.
func (m *Manager) Attach(peer Peer) (*Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		peer.Close()
		return nil, ErrShutdown
	}

	for _, match := range m.lobbies() {
		if seat, err := match.seat(peer); err == nil {
			return seat, nil
		}
	}

	if m.running() < m.maxMatches {
		match := newMatch(m.generateMatchID(), m.catalog, m.store, m.log)
		m.matches[strings.ToLower(match.ID)] = match
		m.log.Info().Str("match", match.ID).Msg("match created")
		return match.seat(peer)
	}

	m.reject(peer)
	return nil, ErrServerFull
}

func (m *Manager) reject(peer Peer) {
	text, err := m.catalog.Render(config.KeyServerFull, config.Data{})
	if err != nil {
		text = string(config.KeyServerFull)
	}
	peer.Deliver(text)
	peer.Close()
	m.log.Warn().Str("addr", peer.Addr()).Msg("connection rejected, server full")
}

// lobbies returns matches still in the lobby, newest first. A lobby match
// may already have both seats taken by players who have not joined yet.
// Caller holds m.mu.
func (m *Manager) lobbies() []*Match {
	var out []*Match
	for _, match := range m.matches {
		if match.Phase() == engine.Lobby {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// running counts unfinished matches. Caller holds m.mu.
func (m *Manager) running() int {
	n := 0
	for _, match := range m.matches {
		if match.Phase() != engine.Finished {
			n++
		}
	}
	return n
}

// Get retrieves a match by ID (case-insensitive)
func (m *Manager) Get(id string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match, ok := m.matches[strings.ToLower(id)]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// List returns all tracked matches, oldest first
func (m *Manager) List() []*Match {
	m.mu.RLock()
	result := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		result = append(result, match)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of tracked matches
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// Results returns the ledger finished matches are recorded to
func (m *Manager) Results() results.Store {
	return m.store
}

// CleanupFinished drops finished matches that ended more than maxAge ago
func (m *Manager) CleanupFinished(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, match := range m.matches {
		snap := match.Snapshot()
		if snap.Phase == engine.Finished && snap.FinishedAt.Before(cutoff) {
			delete(m.matches, id)
			removed++
		}
	}
	return removed
}

// Run removes stale finished matches every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval, retain time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupFinished(retain); n > 0 {
				m.log.Debug().Int("removed", n).Msg("cleaned up finished matches")
			}
		}
	}
}

// Shutdown refuses new peers and disconnects every connected one. Each
// match finishes once its transports report the disconnects. It returns
// when all matches are closed or ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.shutdown = true
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.Unlock()

	for _, match := range matches {
		match.disconnect()
	}
	for _, match := range matches {
		select {
		case <-match.Closed():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// generateMatchID returns a short random match identifier
func (m *Manager) generateMatchID() string {
	for {
		id := uuid.NewString()[:8]
		if _, exists := m.matches[id]; !exists {
			return id
		}
	}
}
