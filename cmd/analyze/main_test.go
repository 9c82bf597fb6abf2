package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/navalbattle/game/results"
)

func sampleResults() []results.Result {
	start := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	return []results.Result{
		{
			MatchID: "a1", Outcome: results.OutcomeVictory, Winner: 1,
			Players: [2]results.PlayerResult{
				{Name: "alice", Shots: 8, ShipsLost: 1},
				{Name: "bob", Shots: 7, ShipsLost: 4},
			},
			StartedAt: start, FinishedAt: start.Add(2 * time.Minute),
		},
		{
			MatchID: "b2", Outcome: results.OutcomeVictory, Winner: 2,
			Players: [2]results.PlayerResult{
				{Name: "carol", Shots: 20, ShipsLost: 4},
				{Name: "alice", Shots: 19, ShipsLost: 3},
			},
			StartedAt: start, FinishedAt: start.Add(4 * time.Minute),
		},
		{
			// abandoned during placement, never started
			MatchID: "c3", Outcome: results.OutcomeAbandoned,
			Players:    [2]results.PlayerResult{{Name: "bob"}},
			FinishedAt: start.Add(time.Minute),
		},
	}
}

func TestSummarize(t *testing.T) {
	s := summarize(sampleResults())

	if s.Matches != 3 || s.Victories != 2 || s.Abandoned != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.AvgDuration != 3*time.Minute {
		t.Errorf("Expected average duration 3m, got %v", s.AvgDuration)
	}
	if len(s.Players) != 3 {
		t.Fatalf("Expected 3 players, got %d", len(s.Players))
	}

	// alice sank 4+4 ships in 27 shots, bob 1 in 7, carol 3 in 20
	want := []struct {
		name  string
		shots int
		sunk  int
	}{
		{"alice", 27, 8},
		{"carol", 20, 3},
		{"bob", 7, 1},
	}
	for i, w := range want {
		p := s.Players[i]
		if p.Name != w.name || p.Shots != w.shots || p.Sunk != w.sunk {
			t.Errorf("Player %d: expected %+v, got %+v", i, w, p)
		}
	}
	if s.Players[2].Played != 2 {
		t.Errorf("Expected bob to have played 2, got %d", s.Players[2].Played)
	}
}

func TestEfficiency(t *testing.T) {
	if got := (PlayerStats{}).Efficiency(); got != 0 {
		t.Errorf("Expected 0 without shots, got %v", got)
	}
	if got := (PlayerStats{Shots: 8, Sunk: 4}).Efficiency(); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}
}

func TestFleetCells(t *testing.T) {
	if got := fleetCells(); got != 8 {
		t.Errorf("Expected 8 fleet cells, got %d", got)
	}
}

func TestAnalyze(t *testing.T) {
	store, err := results.OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Failed to open results db: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	var out bytes.Buffer

	if err := analyze(ctx, store, &out, 100, 10); err != nil {
		t.Fatalf("analyze on empty db: %v", err)
	}
	if !strings.Contains(out.String(), "No matches recorded yet.") {
		t.Errorf("Expected empty notice, got %s", out.String())
	}

	for _, r := range sampleResults() {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record %s: %v", r.MatchID, err)
		}
	}

	out.Reset()
	if err := analyze(ctx, store, &out, 100, 10); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	report := out.String()
	for _, want := range []string{
		"=== Matches (newest 3) ===",
		"Victories: 2",
		"Abandoned: 1 (33%)",
		"Average battle: 3m0s",
		"A perfect game sinks 4 ships in 8 shots.",
		" 1. alice",
		" 2. bob",
		" 3. carol",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, report)
		}
	}
}

type failingStore struct {
	results.Store
}

func (failingStore) Recent(ctx context.Context, limit int) ([]results.Result, error) {
	return nil, errors.New("disk on fire")
}

func TestAnalyze_StoreError(t *testing.T) {
	err := analyze(context.Background(), failingStore{}, &bytes.Buffer{}, 10, 10)
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "results.db")
	store, err := results.OpenSQLite(db)
	if err != nil {
		t.Fatalf("Failed to open results db: %v", err)
	}
	for _, r := range sampleResults() {
		if err := store.Record(context.Background(), r); err != nil {
			t.Fatalf("Record %s: %v", r.MatchID, err)
		}
	}
	store.Close()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run(context.Background(), []string{"analyze", "--db", db, "--window", "2", "--top", "1"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	report := out.String()
	if !strings.Contains(report, "=== Matches (newest 2) ===") || !strings.Contains(report, " 1. alice") {
		t.Errorf("Unexpected report:\n%s", report)
	}
	if strings.Contains(report, " 2. ") {
		t.Errorf("Expected a single leaderboard row, got:\n%s", report)
	}
}

func TestAnalyzeCommand_MissingDB(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.db")

	err := newApp().Run(context.Background(), []string{"analyze", "--db", missing})
	if err == nil || !strings.Contains(err.Error(), "opening results database") {
		t.Fatalf("Expected open error, got %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("A missing database should not be created")
	}
}
