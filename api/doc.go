// Package api provides the HTTP operations API of the naval battle server.
//
// The API is read-only. Matches are played over player connections; these
// endpoints let operators and tools see what is going on.
//
// Endpoints:
//   - GET /api/matches - List hosted matches and their public state
//   - GET /api/matches/{id} - Get one match
//   - GET /api/results?limit=N - Recently finished matches, newest first
//   - GET /api/leaderboard?limit=N - Wins and losses per player name
//   - GET /api/rules - Board size, fleet and command syntax
//   - GET /api/catalogs - Available message catalogs
//   - GET /healthz - Liveness check
//   - GET /ws - WebSocket player connection, when a player handler is set
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "match abc: match not found"}
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8081", server)
package api
