package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
	"github.com/wricardo/mcp-training/navalbattle/game/service"
	"github.com/wricardo/mcp-training/navalbattle/game/session"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	ListMatchesFunc   func(ctx context.Context) ([]*service.MatchInfo, error)
	GetMatchFunc      func(ctx context.Context, matchID string) (*service.MatchInfo, error)
	RecentResultsFunc func(ctx context.Context, limit int) ([]results.Result, error)
	LeaderboardFunc   func(ctx context.Context, limit int) ([]results.Standing, error)
	RulesFunc         func(ctx context.Context) (*service.RulesInfo, error)
	ListCatalogsFunc  func(ctx context.Context) ([]*config.CatalogInfo, error)
}

func (m *MockGameService) ListMatches(ctx context.Context) ([]*service.MatchInfo, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(ctx)
	}
	return []*service.MatchInfo{}, nil
}

func (m *MockGameService) GetMatch(ctx context.Context, matchID string) (*service.MatchInfo, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return &service.MatchInfo{ID: matchID, Phase: engine.Lobby, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) RecentResults(ctx context.Context, limit int) ([]results.Result, error) {
	if m.RecentResultsFunc != nil {
		return m.RecentResultsFunc(ctx, limit)
	}
	return []results.Result{}, nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, limit int) ([]results.Standing, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return []results.Standing{}, nil
}

func (m *MockGameService) Rules(ctx context.Context) (*service.RulesInfo, error) {
	if m.RulesFunc != nil {
		return m.RulesFunc(ctx)
	}
	return &service.RulesInfo{BoardSize: engine.BoardSize, FleetSize: engine.FleetSize}, nil
}

func (m *MockGameService) ListCatalogs(ctx context.Context) ([]*config.CatalogInfo, error) {
	if m.ListCatalogsFunc != nil {
		return m.ListCatalogsFunc(ctx)
	}
	return []*config.CatalogInfo{{ID: "classic", Name: "Classic", Builtin: true}}, nil
}

type stubPlayers struct{ called bool }

func (p *stubPlayers) ServeWS(w http.ResponseWriter, r *http.Request) {
	p.called = true
	w.WriteHeader(http.StatusSwitchingProtocols)
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil, zerolog.Nop())
}

func get(server *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestListMatches(t *testing.T) {
	mockService := &MockGameService{
		ListMatchesFunc: func(ctx context.Context) ([]*service.MatchInfo, error) {
			return []*service.MatchInfo{
				{ID: "a1", Phase: engine.Battle, Players: []engine.PlayerStatus{{ID: 1, Name: "alice"}}},
				{ID: "b2", Phase: engine.Lobby},
			}, nil
		},
	}
	w := get(setupTestServer(mockService), "/api/matches")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count   int `json:"count"`
		Matches []struct {
			ID    string `json:"id"`
			Phase string `json:"phase"`
		} `json:"matches"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 2 || resp.Matches[0].ID != "a1" || resp.Matches[0].Phase != "battle" {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestGetMatch(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"found", nil, http.StatusOK},
		{"not found", fmt.Errorf("match x: %w", session.ErrMatchNotFound), http.StatusNotFound},
		{"service error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetMatchFunc: func(ctx context.Context, matchID string) (*service.MatchInfo, error) {
					if matchID != "abc" {
						t.Errorf("Expected match id abc, got %s", matchID)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.MatchInfo{ID: matchID, Phase: engine.Setup}, nil
				},
			}
			w := get(setupTestServer(mockService), "/api/matches/abc")

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.err != nil {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected error message")
				}
			}
		})
	}
}

func TestRecentResults(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedLimit  int
	}{
		{"default limit", "", http.StatusOK, 0},
		{"explicit limit", "?limit=5", http.StatusOK, 5},
		{"capped limit", "?limit=5000", http.StatusOK, MaxLimit},
		{"zero limit", "?limit=0", http.StatusBadRequest, -1},
		{"bad limit", "?limit=abc", http.StatusBadRequest, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit := -1
			mockService := &MockGameService{
				RecentResultsFunc: func(ctx context.Context, limit int) ([]results.Result, error) {
					gotLimit = limit
					return []results.Result{{MatchID: "m1", Outcome: results.OutcomeVictory, Winner: 1}}, nil
				},
			}
			w := get(setupTestServer(mockService), "/api/results"+tt.query)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if gotLimit != tt.expectedLimit {
				t.Errorf("Expected limit %d, got %d", tt.expectedLimit, gotLimit)
			}
		})
	}
}

func TestLeaderboard(t *testing.T) {
	mockService := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, limit int) ([]results.Standing, error) {
			return []results.Standing{{Name: "alice", Wins: 3, Played: 3}}, nil
		},
	}
	w := get(setupTestServer(mockService), "/api/leaderboard?limit=10")

	var resp struct {
		Count     int                `json:"count"`
		Standings []results.Standing `json:"standings"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 1 || resp.Standings[0].Name != "alice" || resp.Standings[0].Wins != 3 {
		t.Errorf("Unexpected response %+v", resp)
	}

	mockService.LeaderboardFunc = func(ctx context.Context, limit int) ([]results.Standing, error) {
		return nil, fmt.Errorf("db down")
	}
	if w := get(setupTestServer(mockService), "/api/leaderboard"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestRulesAndCatalogs(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	var rules service.RulesInfo
	parseResponse(t, get(server, "/api/rules"), &rules)
	if rules.BoardSize != engine.BoardSize {
		t.Errorf("Expected board size %d, got %d", engine.BoardSize, rules.BoardSize)
	}

	var catalogs struct {
		Count    int                   `json:"count"`
		Catalogs []*config.CatalogInfo `json:"catalogs"`
	}
	parseResponse(t, get(server, "/api/catalogs"), &catalogs)
	if catalogs.Count != 1 || catalogs.Catalogs[0].ID != "classic" {
		t.Errorf("Unexpected catalogs %+v", catalogs)
	}
}

func TestHealthAndRouting(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := get(server, "/healthz")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	if w := get(server, "/ws"); w.Code != http.StatusNotFound {
		t.Errorf("/ws should not be mounted without a player handler, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("POST", "/api/matches", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST, got %d", w.Code)
	}
}

func TestWebSocketMounted(t *testing.T) {
	players := &stubPlayers{}
	server := NewServer(&MockGameService{}, players, zerolog.Nop())

	get(server, "/ws")
	if !players.called {
		t.Error("Expected /ws to reach the player handler")
	}
}

func TestServerWithRealService(t *testing.T) {
	catalogs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create catalog manager: %v", err)
	}
	sessions := session.NewManager(catalogs.Default())
	server := NewServer(service.NewGameService(sessions, catalogs), nil, zerolog.Nop())

	if w := get(server, "/api/matches/nope"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown match, got %d", w.Code)
	}

	var rules service.RulesInfo
	parseResponse(t, get(server, "/api/rules"), &rules)
	if len(rules.Ships) != 3 || rules.Ships[1].Type != "FRIGATE" {
		t.Errorf("Unexpected rules %+v", rules)
	}
}
