package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultLimit is used when a query passes a non-positive limit
const DefaultLimit = 20

var ErrInvalidResult = errors.New("invalid match result")

// Outcome tells how a match ended
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeAbandoned Outcome = "abandoned"
)

// PlayerResult is one side of a finished match. Name is empty when the
// player never joined.
type PlayerResult struct {
	Name      string `json:"name"`
	Shots     int    `json:"shots"`
	ShipsLost int    `json:"ships_lost"`
}

// Result is the ledger entry for one finished match
type Result struct {
	MatchID    string          `json:"match_id"`
	Outcome    Outcome         `json:"outcome"`
	Winner     int             `json:"winner,omitempty"`
	Players    [2]PlayerResult `json:"players"`
	StartedAt  time.Time       `json:"started_at,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// WinnerName returns the winner's name, or "" for abandoned matches
func (r Result) WinnerName() string {
	if r.Winner < 1 || r.Winner > 2 {
		return ""
	}
	return r.Players[r.Winner-1].Name
}

func (r Result) validate() error {
	if r.MatchID == "" {
		return fmt.Errorf("%w: missing match id", ErrInvalidResult)
	}
	if r.Outcome == OutcomeVictory && (r.Winner < 1 || r.Winner > 2) {
		return fmt.Errorf("%w: victory without a winner", ErrInvalidResult)
	}
	return nil
}

// Standing is one leaderboard row
type Standing struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Played int    `json:"played"`
}

// Store records finished matches. Recording the same match twice is a no-op.
type Store interface {
	Record(ctx context.Context, r Result) error
	Recent(ctx context.Context, limit int) ([]Result, error)
	Leaderboard(ctx context.Context, limit int) ([]Standing, error)
	Close() error
}

// rank folds results into standings ordered by wins, then fewest losses,
// then name
func rank(all []Result, limit int) []Standing {
	byName := make(map[string]*Standing)
	for _, r := range all {
		for i, p := range r.Players {
			if p.Name == "" {
				continue
			}
			s, ok := byName[p.Name]
			if !ok {
				s = &Standing{Name: p.Name}
				byName[p.Name] = s
			}
			s.Played++
			switch {
			case r.Winner == i+1:
				s.Wins++
			case r.Winner != 0:
				s.Losses++
			}
		}
	}

	out := make([]Standing, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sortStandings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortStandings(s []Standing) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Wins != s[j].Wins {
			return s[i].Wins > s[j].Wins
		}
		if s[i].Losses != s[j].Losses {
			return s[i].Losses < s[j].Losses
		}
		return s[i].Name < s[j].Name
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
