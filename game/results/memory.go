package results

import (
	"context"
	"sync"
)

// memory keeps results in process memory, newest last
type memory struct {
	mu      sync.RWMutex
	results []Result
	seen    map[string]bool
}

// NewMemoryStore creates an in-memory Store. Results are lost on restart.
func NewMemoryStore() Store {
	return &memory{seen: make(map[string]bool)}
}

func (m *memory) Record(ctx context.Context, r Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[r.MatchID] {
		return nil
	}
	m.seen[r.MatchID] = true
	m.results = append(m.results, r)
	return nil
}

func (m *memory) Recent(ctx context.Context, limit int) ([]Result, error) {
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Result, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}

func (m *memory) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return rank(m.results, normalizeLimit(limit)), nil
}

func (m *memory) Close() error {
	return nil
}
