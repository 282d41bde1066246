package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/pause"
	"github.com/StevePic95/skylardle/internal/randutil"
	"github.com/StevePic95/skylardle/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// PlayCmd runs a game in the terminal, resuming today's saved game when
// there is one.
type PlayCmd struct {
	Board int  `help:"Play this board id instead of today's"`
	Again bool `help:"Play even if today's board is already finished"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	logger, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	clock := quartz.NewReal()
	id := c.Board
	if id == 0 {
		id = catalog.IDForDate(clock.Now())
	}
	b, err := catalog.Load(id)
	if err != nil {
		return err
	}

	store := openStore(cfg, clock, logger)
	if !c.Again {
		done, err := store.TodayComplete()
		if err != nil {
			logger.Warn("Failed to read today's result", "error", err)
		}
		if done != nil && done.BoardID == id {
			printResults(os.Stdout, fmt.Sprintf("You already played board #%d today.", id), *done)
			return nil
		}
	}

	roster, err := cfg.Roster()
	if err != nil {
		return err
	}
	opts := []engine.Option{engine.WithConfig(cfg.Engine()), engine.WithRoster(roster)}
	oppA, oppB, pinned, err := cfg.PinnedOpponents(roster)
	if err != nil {
		return err
	}
	if pinned {
		opts = append(opts, engine.WithOpponents(oppA, oppB))
	}

	seed := randutil.Seed(cfg.Game.Seed)
	logger.Info("Starting skylardle", "version", version, "board", id, "seed", seed)

	sched := pause.New(clock, logger)
	bridge := tui.NewBridge(logger, sched, cfg.ResultDelay())
	model := tui.NewModel(logger, sched, bridge)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	detach := bridge.Attach(program.Send)
	defer detach()

	eng := engine.New(logger, randutil.New(seed), sched, bridge, store, opts...)
	gameCtx, cancelGame := context.WithCancel(ctx)
	defer cancelGame()

	var results *engine.Results
	group.Go(func() error {
		// Leaving the screen abandons the game; the snapshot stays.
		defer cancelGame()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer bridge.Quit()
		res, err := eng.Resume(gameCtx, b)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("Game left unfinished", "board", id)
				return nil
			}
			return err
		}
		results = res
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}

	if results != nil {
		printResults(os.Stdout, "Thanks for playing!", *results)
	} else {
		fmt.Println("Game saved. Run skylardle again today to pick up where you left off.")
	}
	return nil
}

func printResults(w io.Writer, headline string, res engine.Results) {
	fmt.Fprintln(w, tui.HeaderStyle.Render(headline))
	fmt.Fprintln(w, strings.Join(tui.FormatResults(res), "\n"))
}
