package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
    match_id    TEXT PRIMARY KEY,
    outcome     TEXT NOT NULL,
    winner      INTEGER NOT NULL DEFAULT 0,
    player1     TEXT NOT NULL DEFAULT '',
    shots1      INTEGER NOT NULL DEFAULT 0,
    lost1       INTEGER NOT NULL DEFAULT 0,
    player2     TEXT NOT NULL DEFAULT '',
    shots2      INTEGER NOT NULL DEFAULT 0,
    lost2       INTEGER NOT NULL DEFAULT 0,
    started_at  INTEGER NOT NULL DEFAULT 0,
    finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_results_finished ON match_results(finished_at);
`

// sqliteStore is a Store backed by a SQLite file
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the results database at path.
// The parent directory is created, WAL journaling and a busy timeout are
// enabled and the schema is applied.
func OpenSQLite(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Record(ctx context.Context, r Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	p1, p2 := r.Players[0], r.Players[1]
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO match_results
            (match_id, outcome, winner, player1, shots1, lost1, player2, shots2, lost2, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, string(r.Outcome), r.Winner,
		p1.Name, p1.Shots, p1.ShipsLost,
		p2.Name, p2.Shots, p2.ShipsLost,
		toMillis(r.StartedAt), toMillis(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record result %s: %w", r.MatchID, err)
	}
	return nil
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]Result, error) {
	limit = normalizeLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
        SELECT match_id, outcome, winner, player1, shots1, lost1, player2, shots2, lost2, started_at, finished_at
        FROM match_results
        ORDER BY finished_at DESC, rowid DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var (
			r                 Result
			outcome           string
			started, finished int64
		)
		if err := rows.Scan(
			&r.MatchID, &outcome, &r.Winner,
			&r.Players[0].Name, &r.Players[0].Shots, &r.Players[0].ShipsLost,
			&r.Players[1].Name, &r.Players[1].Shots, &r.Players[1].ShipsLost,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Outcome = Outcome(outcome)
		r.StartedAt = fromMillis(started)
		r.FinishedAt = fromMillis(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	limit = normalizeLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, SUM(win) AS wins, SUM(loss) AS losses, COUNT(*) AS played
        FROM (
            SELECT player1 AS name,
                   CASE WHEN winner = 1 THEN 1 ELSE 0 END AS win,
                   CASE WHEN winner = 2 THEN 1 ELSE 0 END AS loss
            FROM match_results WHERE player1 <> ''
            UNION ALL
            SELECT player2 AS name,
                   CASE WHEN winner = 2 THEN 1 ELSE 0 END AS win,
                   CASE WHEN winner = 1 THEN 1 ELSE 0 END AS loss
            FROM match_results WHERE player2 <> ''
        )
        GROUP BY name
        ORDER BY wins DESC, losses ASC, name ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]Standing, 0, limit)
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.Name, &st.Wins, &st.Losses, &st.Played); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
