// Package service provides the read-only query layer of the naval battle
// server.
//
// Players only ever interact with a match through their line connection.
// Everything else, the HTTP API and the MCP tools, goes through GameService:
// listing hosted matches and their public state, reading the results
// ledger and leaderboard, and describing the rules and available message
// catalogs. Board contents are never exposed.
//
// Usage:
//
//	sessions := session.NewManager(catalogs.Default())
//	svc := service.NewGameService(sessions, catalogs)
//
//	matches, err := svc.ListMatches(ctx)
//	board, err := svc.Leaderboard(ctx, 10)
package service
