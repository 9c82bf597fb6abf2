package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
	"github.com/wricardo/mcp-training/navalbattle/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	matches  MatchRegistry
	catalogs CatalogRegistry
}

// NewGameService creates a new game service instance
func NewGameService(matches MatchRegistry, catalogs CatalogRegistry) GameService {
	return &gameServiceImpl{
		matches:  matches,
		catalogs: catalogs,
	}
}

// ListMatches returns every tracked match, oldest first
func (s *gameServiceImpl) ListMatches(ctx context.Context) ([]*MatchInfo, error) {
	matches := s.matches.List()
	result := make([]*MatchInfo, 0, len(matches))
	for _, m := range matches {
		result = append(result, matchInfo(m))
	}
	return result, nil
}

// GetMatch retrieves one match
func (s *gameServiceImpl) GetMatch(ctx context.Context, matchID string) (*MatchInfo, error) {
	m, err := s.matches.Get(matchID)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	return matchInfo(m), nil
}

// RecentResults returns finished matches, newest first
func (s *gameServiceImpl) RecentResults(ctx context.Context, limit int) ([]results.Result, error) {
	return s.matches.Results().Recent(ctx, limit)
}

// Leaderboard returns standings across all recorded matches
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]results.Standing, error) {
	return s.matches.Results().Leaderboard(ctx, limit)
}

// Rules describes the board, the fleet and the commands, with ship names
// taken from the default catalog
func (s *gameServiceImpl) Rules(ctx context.Context) (*RulesInfo, error) {
	catalog := s.catalogs.Default()

	rules := &RulesInfo{
		BoardSize: engine.BoardSize,
		FleetSize: engine.FleetSize,
	}
	for _, t := range engine.ShipTypes {
		rules.Ships = append(rules.Ships, ShipRule{
			Type:  catalog.Ship(t.String()),
			Size:  t.Size(),
			Limit: t.Limit(),
		})
	}

	coords := fmt.Sprintf("<x> <y> are 1 to %d", engine.BoardSize)
	rules.Commands = []CommandInfo{
		{Name: "JOIN", Usage: "JOIN <name>", Phase: engine.Lobby.String()},
		{Name: "POS", Usage: "POS <type> <x> <y> <H|V>; " + coords, Phase: engine.Setup.String()},
		{Name: "READY", Usage: "READY", Phase: engine.Setup.String()},
		{Name: "FIRE", Usage: "FIRE <x> <y>; " + coords, Phase: engine.Battle.String()},
	}
	return rules, nil
}

// ListCatalogs returns the available message catalogs
func (s *gameServiceImpl) ListCatalogs(ctx context.Context) ([]*config.CatalogInfo, error) {
	return s.catalogs.List()
}

func matchInfo(m *session.Match) *MatchInfo {
	snap := m.Snapshot()
	info := &MatchInfo{
		ID:         m.ID,
		Phase:      snap.Phase,
		CreatedAt:  snap.CreatedAt,
		StartedAt:  timePtr(snap.StartedAt),
		FinishedAt: timePtr(snap.FinishedAt),
		Players:    snap.Players,
	}
	if snap.Winner > 0 && snap.Winner <= len(snap.Players) {
		info.Winner = snap.Players[snap.Winner-1].Name
	}
	return info
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
