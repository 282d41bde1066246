package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/statistics"
	"github.com/StevePic95/skylardle/internal/storage"
	"github.com/StevePic95/skylardle/internal/tui"
	"github.com/coder/quartz"
)

type StatsCmd struct {
	JSON bool `help:"Print as JSON"`
}

func (c *StatsCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel())
	store := openStore(cfg, quartz.NewReal(), logger)
	return c.run(os.Stdout, store)
}

type statsReport struct {
	Stats   engine.Stats       `json:"stats"`
	Mean    float64            `json:"meanScore"`
	Median  float64            `json:"medianScore"`
	StdDev  float64            `json:"stdDevScore"`
	Best    int                `json:"bestScore"`
	Worst   int                `json:"worstScore"`
	WinRate float64            `json:"winRate"`
	Beat    map[string]float64 `json:"beatRate,omitempty"`
	History []engine.Results   `json:"history"`
}

func (c *StatsCmd) run(w io.Writer, store *storage.Store) error {
	stats, err := store.Stats()
	if err != nil {
		return err
	}
	history, err := store.History()
	if err != nil {
		return err
	}
	summary := statistics.Summarize(history)

	if c.JSON {
		report := statsReport{
			Stats:   stats,
			Mean:    summary.Mean(),
			Median:  summary.Median(),
			StdDev:  summary.StdDev(),
			Best:    summary.BestScore,
			Worst:   summary.WorstScore,
			WinRate: summary.WinRate(),
			History: history,
		}
		if len(summary.Opponents) > 0 {
			report.Beat = make(map[string]float64, len(summary.Opponents))
			for _, id := range summary.OpponentIDs() {
				report.Beat[id] = summary.BeatRate(id)
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(w, tui.HeaderStyle.Render("SKYLARDLE STATS"))
	if stats.GamesPlayed == 0 {
		fmt.Fprintln(w, "No games played yet.")
		return nil
	}
	fmt.Fprintf(w, "Played:          %d\n", stats.GamesPlayed)
	fmt.Fprintf(w, "Won:             %d (%.0f%%)\n", stats.Wins, 100*float64(stats.Wins)/float64(stats.GamesPlayed))
	fmt.Fprintf(w, "Current streak:  %d\n", stats.CurrentStreak)
	fmt.Fprintf(w, "Best streak:     %d\n", stats.BestStreak)
	fmt.Fprintf(w, "High score:      %s\n", tui.FormatMoney(stats.HighScore))

	if summary.Games == 0 {
		return nil
	}
	if err := summary.Validate(); err != nil {
		return fmt.Errorf("history is inconsistent: %w", err)
	}
	lo, hi := summary.ConfidenceInterval95()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Over %d saved games:\n", summary.Games)
	fmt.Fprintf(w, "  Mean score:    %s (95%% CI %s to %s)\n", money(summary.Mean()), money(lo), money(hi))
	fmt.Fprintf(w, "  Median score:  %s\n", money(summary.Median()))
	fmt.Fprintf(w, "  Range:         %s to %s\n", tui.FormatMoney(summary.WorstScore), tui.FormatMoney(summary.BestScore))
	if summary.Negative > 0 {
		fmt.Fprintf(w, "  In the red:    %d\n", summary.Negative)
	}
	for _, id := range summary.OpponentIDs() {
		rec := summary.Opponents[id]
		fmt.Fprintf(w, "  vs %-10s  ahead in %d of %d (%.0f%%)\n", id, rec.Beaten, rec.Games, 100*summary.BeatRate(id))
	}
	return nil
}

func money(v float64) string {
	return tui.FormatMoney(int(math.Round(v)))
}
