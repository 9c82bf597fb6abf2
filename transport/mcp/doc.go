// Package mcp exposes the naval battle operations API as Model Context
// Protocol tools.
//
// The Client is a thin proxy: every tool performs one GET against the REST
// API of a running server and formats the JSON answer as text for the
// agent. It never plays; matches are only played over player connections.
//
// Tools:
//   - list_matches: hosted matches with phase and players
//   - get_match: public state of one match (match_id)
//   - recent_results: recently finished matches (limit)
//   - leaderboard: standings ordered by wins (limit)
//   - game_rules: board, fleet and command syntax
//   - list_catalogs: available message catalogs
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8081")
//	server.ServeStdio(client.GetMCPServer())
package mcp
