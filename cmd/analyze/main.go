// Command analyze prints a quick, human-readable report about recorded
// matches in a results database. It summarizes how matches ended, how long
// they lasted, how efficiently each player shot, and the leaderboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/navalbattle/game/engine"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
)

// Summary aggregates a window of match results
type Summary struct {
	Matches   int
	Victories int
	Abandoned int
	// AvgDuration covers matches that reached the battle phase
	AvgDuration time.Duration
	Players     []PlayerStats
}

// PlayerStats is one player's shooting record across the window
type PlayerStats struct {
	Name   string
	Played int
	Shots  int
	// Sunk counts enemy ships sunk, i.e. the opponent's ships lost
	Sunk int
}

// Efficiency returns enemy ships sunk per shot fired
func (p PlayerStats) Efficiency() float64 {
	if p.Shots == 0 {
		return 0
	}
	return float64(p.Sunk) / float64(p.Shots)
}

// summarize folds results into a Summary. Players are ordered by
// efficiency, then by name.
func summarize(all []results.Result) Summary {
	s := Summary{Matches: len(all)}

	var total time.Duration
	timed := 0
	byName := make(map[string]*PlayerStats)

	for _, r := range all {
		if r.Outcome == results.OutcomeVictory {
			s.Victories++
		} else {
			s.Abandoned++
		}
		if !r.StartedAt.IsZero() && r.FinishedAt.After(r.StartedAt) {
			total += r.FinishedAt.Sub(r.StartedAt)
			timed++
		}

		for i, p := range r.Players {
			if p.Name == "" {
				continue
			}
			ps, ok := byName[p.Name]
			if !ok {
				ps = &PlayerStats{Name: p.Name}
				byName[p.Name] = ps
			}
			ps.Played++
			ps.Shots += p.Shots
			ps.Sunk += r.Players[1-i].ShipsLost
		}
	}
	if timed > 0 {
		s.AvgDuration = total / time.Duration(timed)
	}

	for _, ps := range byName {
		s.Players = append(s.Players, *ps)
	}
	sort.Slice(s.Players, func(i, j int) bool {
		ei, ej := s.Players[i].Efficiency(), s.Players[j].Efficiency()
		if ei != ej {
			return ei > ej
		}
		return s.Players[i].Name < s.Players[j].Name
	})
	return s
}

// fleetCells is the number of cells a full fleet occupies, the fewest shots
// that can win a match
func fleetCells() int {
	n := 0
	for _, t := range engine.ShipTypes {
		n += t.Size() * t.Limit()
	}
	return n
}

// analyze writes the report for the newest window results in store
func analyze(ctx context.Context, store results.Store, w io.Writer, window, top int) error {
	recent, err := store.Recent(ctx, window)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}
	if len(recent) == 0 {
		fmt.Fprintln(w, "No matches recorded yet.")
		return nil
	}

	s := summarize(recent)
	fmt.Fprintf(w, "\n=== Matches (newest %d) ===\n", s.Matches)
	fmt.Fprintf(w, "Victories: %d\n", s.Victories)
	fmt.Fprintf(w, "Abandoned: %d (%.0f%%)\n", s.Abandoned, 100*float64(s.Abandoned)/float64(s.Matches))
	if s.AvgDuration > 0 {
		fmt.Fprintf(w, "Average battle: %s\n", s.AvgDuration.Round(time.Second))
	}

	fmt.Fprintf(w, "\n=== Shooting ===\n")
	for _, p := range s.Players {
		fmt.Fprintf(w, "%-20s played %-3d shots %-4d sunk %-3d (%.2f per shot)\n",
			p.Name, p.Played, p.Shots, p.Sunk, p.Efficiency())
	}
	fmt.Fprintf(w, "A perfect game sinks %d ships in %d shots.\n", engine.FleetSize, fleetCells())

	standings, err := store.Leaderboard(ctx, top)
	if err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}
	fmt.Fprintf(w, "\n=== Leaderboard ===\n")
	for i, st := range standings {
		fmt.Fprintf(w, "%2d. %-20s W %-3d L %-3d played %d\n", i+1, st.Name, st.Wins, st.Losses, st.Played)
	}
	fmt.Fprintln(w, strings.Repeat("=", 40))
	return nil
}

// newApp builds the analyze command
func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "report on matches recorded in a results database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Value:   "results.db",
				Usage:   "results database written by the server",
				Sources: cli.EnvVars("NAVAL_RESULTS_DB"),
			},
			&cli.IntFlag{
				Name:  "window",
				Value: 500,
				Usage: "number of most recent matches to analyze",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "leaderboard rows to show",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db := cmd.String("db")
			// OpenSQLite would create an empty database
			if _, err := os.Stat(db); err != nil {
				return fmt.Errorf("opening results database: %w", err)
			}

			store, err := results.OpenSQLite(db)
			if err != nil {
				return fmt.Errorf("opening results database: %w", err)
			}
			defer store.Close()

			return analyze(ctx, store, cmd.Root().Writer, cmd.Int("window"), cmd.Int("top"))
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
