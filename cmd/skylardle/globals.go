package main

import (
	"fmt"
	"io"
	"os"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/config"
	"github.com/StevePic95/skylardle/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
)

// Globals are the flags shared by every command. Set flags override the
// config file.
type Globals struct {
	Config    string `short:"c" type:"path" default:"skylardle.hcl" env:"SKYLARDLE_CONFIG" help:"HCL config file; a missing file uses defaults"`
	Debug     bool   `env:"SKYLARDLE_DEBUG" help:"Enable debug logging"`
	LogFile   string `type:"path" env:"SKYLARDLE_LOG_FILE" help:"Log file"`
	BoardsDir string `type:"path" env:"SKYLARDLE_BOARDS_DIR" help:"Board catalog directory"`
	DataDir   string `type:"path" env:"SKYLARDLE_DATA_DIR" help:"Directory for the saved game, history and stats"`
	Seed      *int64 `env:"SKYLARDLE_SEED" help:"Deterministic RNG seed for the opponents (optional)"`
	NoColor   bool   `env:"SKYLARDLE_NO_COLOR" help:"Disable colors"`
}

// config loads the config file and applies the flags on top.
func (g *Globals) config() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if g.BoardsDir != "" {
		cfg.Boards.Dir = g.BoardsDir
	}
	if g.DataDir != "" {
		cfg.Storage.Dir = g.DataDir
	}
	if g.Seed != nil {
		cfg.Game.Seed = g.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return cfg, nil
}

// openLog opens the configured log file for appending. The returned close
// function is always safe to call.
func openLog(cfg *config.Config) (*log.Logger, func(), error) {
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := newLogger(f, cfg.LogLevel())
	return logger, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}, nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}

// openStore returns the file store under the storage dir, or a memory store
// when no directory can be determined.
func openStore(cfg *config.Config, clock quartz.Clock, logger *log.Logger) *storage.Store {
	dir, err := cfg.StorageDir()
	if err != nil {
		logger.Warn("Progress will not be saved", "error", err)
		return storage.NewMemoryStore(clock, logger)
	}
	return storage.NewFileStore(dir, clock, logger)
}

func openCatalog(cfg *config.Config) (*board.Catalog, error) {
	catalog, err := board.OpenCatalog(cfg.Boards.Dir)
	if err != nil {
		if board.IsNotExist(err) {
			return nil, fmt.Errorf("no board catalog in %s (set --boards-dir): %w", cfg.Boards.Dir, err)
		}
		return nil, err
	}
	return catalog, nil
}
