package service

import (
	"context"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
	"github.com/wricardo/mcp-training/navalbattle/game/session"
)

// GameService is the read-only view of the server used by the HTTP API and
// the MCP tools. Gameplay itself only happens over player connections.
type GameService interface {
	// Matches
	ListMatches(ctx context.Context) ([]*MatchInfo, error)
	GetMatch(ctx context.Context, matchID string) (*MatchInfo, error)

	// Ledger
	RecentResults(ctx context.Context, limit int) ([]results.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]results.Standing, error)

	// Reference
	Rules(ctx context.Context) (*RulesInfo, error)
	ListCatalogs(ctx context.Context) ([]*config.CatalogInfo, error)
}

// MatchRegistry is the subset of the session manager the service reads
type MatchRegistry interface {
	List() []*session.Match
	Get(id string) (*session.Match, error)
	Results() results.Store
}

// CatalogRegistry lists the available message catalogs
type CatalogRegistry interface {
	List() ([]*config.CatalogInfo, error)
	Default() *config.Catalog
}
