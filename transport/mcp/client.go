package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
	"github.com/wricardo/mcp-training/navalbattle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Naval Battle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Naval Battle - MCP Interface

This is a read-only view of a two-player naval battle server. Matches are
played by connecting to the game port and typing line commands; these tools
let you watch matches and read the results ledger.

AVAILABLE TOOLS:
- list_matches: List hosted matches with their phase and players
- get_match: Public state of one match
- recent_results: Recently finished matches
- leaderboard: Wins and losses per player
- game_rules: Board, fleet and command syntax
- list_catalogs: Available message catalogs`),
	)

	c.registerTools()
}

func limitProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Maximum number of rows to return (optional, default 20)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Matches
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_matches",
		Description: "List all hosted matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_match",
		Description: "Get the public state of a specific match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match ID to retrieve",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleGetMatch)

	// Ledger
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "recent_results",
		Description: "List recently finished matches, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limitProperty()},
		},
	}, c.handleRecentResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Player standings ordered by wins",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limitProperty()},
		},
	}, c.handleLeaderboard)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Describe the board, the fleet and the line commands",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_catalogs",
		Description: "List the available message catalogs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListCatalogs)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// limitQuery turns the optional limit argument into a query string
func limitQuery(request mcp.CallToolRequest) string {
	limit, ok := arguments(request)["limit"].(float64)
	if !ok || limit < 1 {
		return ""
	}
	return "?limit=" + strconv.Itoa(int(limit))
}

// Tool handlers

func (c *Client) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                 `json:"count"`
		Matches []service.MatchInfo `json:"matches"`
	}
	if err := c.apiCall(ctx, "/api/matches", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No matches hosted.\n"), nil
	}
	result := fmt.Sprintf("Matches (%d):\n\n", response.Count)
	for _, m := range response.Matches {
		result += fmt.Sprintf("- %s [%s] %s (Created: %s)\n",
			m.ID, m.Phase, formatPlayers(&m), m.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID, _ := arguments(request)["match_id"].(string)
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	var match service.MatchInfo
	if err := c.apiCall(ctx, "/api/matches/"+url.PathEscape(matchID), &match); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMatch(&match)), nil
}

func (c *Client) handleRecentResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int              `json:"count"`
		Results []results.Result `json:"results"`
	}
	if err := c.apiCall(ctx, "/api/results"+limitQuery(request), &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No finished matches yet.\n"), nil
	}
	result := fmt.Sprintf("Recent Results (%d):\n\n", response.Count)
	for _, r := range response.Results {
		result += formatResult(r) + "\n"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count     int                `json:"count"`
		Standings []results.Standing `json:"standings"`
	}
	if err := c.apiCall(ctx, "/api/leaderboard"+limitQuery(request), &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("Leaderboard is empty.\n"), nil
	}
	var b strings.Builder
	b.WriteString("Leaderboard:\n\n")
	for i, st := range response.Standings {
		fmt.Fprintf(&b, "%2d. %-20s W %-3d L %-3d played %d\n", i+1, st.Name, st.Wins, st.Losses, st.Played)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules service.RulesInfo
	if err := c.apiCall(ctx, "/api/rules", &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRules(&rules)), nil
}

func (c *Client) handleListCatalogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                  `json:"count"`
		Catalogs []config.CatalogInfo `json:"catalogs"`
	}
	if err := c.apiCall(ctx, "/api/catalogs", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Catalogs:\n\n"
	for _, cat := range response.Catalogs {
		source := "file"
		if cat.Builtin {
			source = "built-in"
		}
		result += fmt.Sprintf("• %s (%s, %s)\n  %s\n", cat.ID, cat.Name, source, cat.Description)
	}
	return mcp.NewToolResultText(result), nil
}

// Formatting

func formatPlayers(m *service.MatchInfo) string {
	if len(m.Players) == 0 {
		return "no players"
	}
	names := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		name := p.Name
		if !p.Joined {
			name = fmt.Sprintf("(player %d, not joined)", p.ID)
		}
		names = append(names, name)
	}
	return strings.Join(names, " vs ")
}

func formatMatch(m *service.MatchInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match %s\n", m.ID)
	fmt.Fprintf(&b, "Phase: %s\n", m.Phase)
	fmt.Fprintf(&b, "Created: %s\n", m.CreatedAt.Format(time.RFC3339))
	if m.StartedAt != nil {
		fmt.Fprintf(&b, "Battle started: %s\n", m.StartedAt.Format(time.RFC3339))
	}
	if m.FinishedAt != nil {
		fmt.Fprintf(&b, "Finished: %s\n", m.FinishedAt.Format(time.RFC3339))
	}
	if m.Winner != "" {
		fmt.Fprintf(&b, "Winner: %s\n", m.Winner)
	}

	b.WriteString("\nPlayers:\n")
	for _, p := range m.Players {
		name := p.Name
		if name == "" {
			name = "-"
		}
		var flags []string
		if p.Ready {
			flags = append(flags, "ready")
		}
		if p.HasTurn {
			flags = append(flags, "has turn")
		}
		if !p.Connected {
			flags = append(flags, "left")
		}
		fmt.Fprintf(&b, "  %d. %s  ships placed %d, ships lost %d, shots %d",
			p.ID, name, p.ShipsPlaced, p.ShipsSunk, p.ShotsFired)
		if len(flags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(flags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatResult(r results.Result) string {
	p1, p2 := r.Players[0].Name, r.Players[1].Name
	if p2 == "" {
		p2 = "-"
	}
	line := fmt.Sprintf("- %s %s vs %s: ", r.FinishedAt.Format("2006-01-02 15:04"), p1, p2)
	if r.Outcome == results.OutcomeVictory {
		return line + r.WinnerName() + " won"
	}
	return line + "abandoned"
}

func formatRules(r *service.RulesInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %dx%d, coordinates 1 to %d\n", r.BoardSize, r.BoardSize, r.BoardSize)
	fmt.Fprintf(&b, "Fleet: %d ships\n", r.FleetSize)
	for _, s := range r.Ships {
		fmt.Fprintf(&b, "  %-10s size %d, up to %d\n", s.Type, s.Size, s.Limit)
	}
	b.WriteString("\nCommands:\n")
	for _, cmd := range r.Commands {
		fmt.Fprintf(&b, "  %-6s %s (%s)\n", cmd.Name, cmd.Usage, cmd.Phase)
	}
	return b.String()
}
