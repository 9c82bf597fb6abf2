// Package results keeps a ledger of finished matches.
//
// A Result is recorded once per match when it finishes, either by victory
// or because both players disconnected. The ledger is only used for
// reporting (recent matches, leaderboard); it never restores a match.
//
// Two Store implementations are provided: NewMemoryStore for development
// and tests, and OpenSQLite for a durable file using mattn/go-sqlite3 in
// WAL mode.
package results
