// Package config loads the HCL configuration file. Every block and
// attribute is optional; a missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/opponent"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete configuration.
type Config struct {
	Game      GameSettings
	Storage   StorageSettings
	Boards    BoardSettings
	Log       LogSettings
	Opponents []OpponentConfig
}

// file mirrors the HCL document. Blocks are pointers so absent ones keep
// their defaults.
type file struct {
	Game      *GameSettings    `hcl:"game,block"`
	Storage   *StorageSettings `hcl:"storage,block"`
	Boards    *BoardSettings   `hcl:"boards,block"`
	Log       *LogSettings     `hcl:"log,block"`
	Opponents []OpponentConfig `hcl:"opponent,block"`
}

// GameSettings are the human-facing timings. Zero durations take the
// default, except wager_timeout_ms where zero waits indefinitely.
type GameSettings struct {
	PlayerName                 string   `hcl:"player_name,optional"`
	PlayerBio                  string   `hcl:"player_bio,optional"`
	AnswerTimeoutMS            int      `hcl:"answer_timeout_ms,optional"`
	DailyDoubleAnswerTimeoutMS int      `hcl:"daily_double_answer_timeout_ms,optional"`
	FinalThinkTimeMS           int      `hcl:"final_think_time_ms,optional"`
	WagerTimeoutMS             int      `hcl:"wager_timeout_ms,optional"`
	PickDelayMS                int      `hcl:"pick_delay_ms,optional"`
	ResultDelayMS              int      `hcl:"result_delay_ms,optional"`
	Seed                       *int64   `hcl:"seed,optional"`
	Opponents                  []string `hcl:"opponents,optional"`
}

// StorageSettings locate the saved game document.
type StorageSettings struct {
	Dir string `hcl:"dir,optional"`
}

// BoardSettings locate the board catalog.
type BoardSettings struct {
	Dir string `hcl:"dir,optional"`
}

// LogSettings configure the log file. The terminal belongs to the game.
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// OpponentConfig overrides a built-in personality or adds a new one. Unset
// attributes keep the built-in values; a new id must set them all.
type OpponentConfig struct {
	ID                 string   `hcl:"id,label"`
	Name               string   `hcl:"name,optional"`
	Bio                string   `hcl:"bio,optional"`
	AccuracyAcademic   *float64 `hcl:"accuracy_academic,optional"`
	AccuracyPopCulture *float64 `hcl:"accuracy_pop_culture,optional"`
	BuzzEagerness      *float64 `hcl:"buzz_eagerness,optional"`
	BuzzSpeedMinMS     *int     `hcl:"buzz_speed_min_ms,optional"`
	BuzzSpeedMaxMS     *int     `hcl:"buzz_speed_max_ms,optional"`
	ReadingFactor      *float64 `hcl:"reading_factor,optional"`
	DailyDoubleStyle   string   `hcl:"dd_wager_style,optional"`
	FinalStyle         string   `hcl:"fj_wager_style,optional"`
}

const (
	defaultAnswerTimeoutMS            = 6000
	defaultDailyDoubleAnswerTimeoutMS = 8000
	defaultFinalThinkTimeMS           = 30000
	defaultPickDelayMS                = 1200
	defaultResultDelayMS              = 2500
	defaultLogLevel                   = "info"
	defaultLogFile                    = "skylardle.log"
	defaultBoardsDir                  = "boards"
)

// Default returns the built-in configuration.
func Default() *Config {
	eng := engine.DefaultConfig()
	return &Config{
		Game: GameSettings{
			PlayerName:                 eng.PlayerName,
			PlayerBio:                  eng.PlayerBio,
			AnswerTimeoutMS:            defaultAnswerTimeoutMS,
			DailyDoubleAnswerTimeoutMS: defaultDailyDoubleAnswerTimeoutMS,
			FinalThinkTimeMS:           defaultFinalThinkTimeMS,
			PickDelayMS:                defaultPickDelayMS,
			ResultDelayMS:              defaultResultDelayMS,
		},
		Boards: BoardSettings{Dir: defaultBoardsDir},
		Log:    LogSettings{Level: defaultLogLevel, File: defaultLogFile},
	}
}

// Load reads filename, returning the defaults when it does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	if raw.Storage != nil {
		cfg.Storage = *raw.Storage
	}
	if raw.Boards != nil {
		cfg.Boards = *raw.Boards
	}
	if raw.Log != nil {
		cfg.Log = *raw.Log
	}
	cfg.Opponents = raw.Opponents
	cfg.applyDefaults()

	// Relative directories are relative to the config file.
	base := filepath.Dir(filename)
	cfg.Boards.Dir = resolve(base, cfg.Boards.Dir)
	cfg.Storage.Dir = resolve(base, cfg.Storage.Dir)
	return cfg, nil
}

func resolve(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

func (c *Config) applyDefaults() {
	def := Default()
	g := &c.Game
	if g.PlayerName == "" {
		g.PlayerName = def.Game.PlayerName
	}
	if g.PlayerBio == "" {
		g.PlayerBio = def.Game.PlayerBio
	}
	if g.AnswerTimeoutMS == 0 {
		g.AnswerTimeoutMS = defaultAnswerTimeoutMS
	}
	if g.DailyDoubleAnswerTimeoutMS == 0 {
		g.DailyDoubleAnswerTimeoutMS = defaultDailyDoubleAnswerTimeoutMS
	}
	if g.FinalThinkTimeMS == 0 {
		g.FinalThinkTimeMS = defaultFinalThinkTimeMS
	}
	if g.PickDelayMS == 0 {
		g.PickDelayMS = defaultPickDelayMS
	}
	if g.ResultDelayMS == 0 {
		g.ResultDelayMS = defaultResultDelayMS
	}
	if c.Boards.Dir == "" {
		c.Boards.Dir = defaultBoardsDir
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = defaultLogFile
	}
}

// Validate checks the configuration is playable.
func (c *Config) Validate() error {
	g := c.Game
	for name, ms := range map[string]int{
		"answer_timeout_ms":              g.AnswerTimeoutMS,
		"daily_double_answer_timeout_ms": g.DailyDoubleAnswerTimeoutMS,
		"final_think_time_ms":            g.FinalThinkTimeMS,
	} {
		if ms <= 0 {
			return fmt.Errorf("game: %s must be positive, got %d", name, ms)
		}
	}
	for name, ms := range map[string]int{
		"wager_timeout_ms": g.WagerTimeoutMS,
		"pick_delay_ms":    g.PickDelayMS,
		"result_delay_ms":  g.ResultDelayMS,
	} {
		if ms < 0 {
			return fmt.Errorf("game: %s must not be negative, got %d", name, ms)
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	roster, err := c.Roster()
	if err != nil {
		return err
	}
	if _, _, _, err := c.PinnedOpponents(roster); err != nil {
		return err
	}
	return nil
}

var wagerStyles = map[opponent.WagerStyle]bool{
	opponent.Conservative: true,
	opponent.Bold:         true,
	opponent.Strategic:    true,
	opponent.Chaotic:      true,
}

// Roster returns the built-in roster with every opponent block applied.
func (c *Config) Roster() (*opponent.Roster, error) {
	roster := opponent.DefaultRoster()
	seen := make(map[string]bool, len(c.Opponents))
	for _, oc := range c.Opponents {
		if seen[oc.ID] {
			return nil, fmt.Errorf("opponent %q: configured twice", oc.ID)
		}
		seen[oc.ID] = true
		if oc.ID == engine.HumanID {
			return nil, fmt.Errorf("opponent %q: id is reserved for the human player", oc.ID)
		}

		base, _ := roster.Get(oc.ID)
		p := oc.apply(base)
		for _, style := range []opponent.WagerStyle{p.DailyDoubleStyle, p.FinalStyle} {
			if style != "" && !wagerStyles[style] {
				return nil, fmt.Errorf("opponent %q: unknown wager style %q", oc.ID, style)
			}
		}

		next, err := roster.With(p)
		if err != nil {
			return nil, err
		}
		roster = next
	}
	return roster, nil
}

func (oc OpponentConfig) apply(p opponent.Profile) opponent.Profile {
	p.ID = oc.ID
	if oc.Name != "" {
		p.Name = oc.Name
	}
	if oc.Bio != "" {
		p.Bio = oc.Bio
	}
	if oc.AccuracyAcademic != nil {
		p.AccuracyAcademic = *oc.AccuracyAcademic
	}
	if oc.AccuracyPopCulture != nil {
		p.AccuracyPopCulture = *oc.AccuracyPopCulture
	}
	if oc.BuzzEagerness != nil {
		p.BuzzEagerness = *oc.BuzzEagerness
	}
	if oc.BuzzSpeedMinMS != nil {
		p.BuzzSpeedMin = time.Duration(*oc.BuzzSpeedMinMS) * time.Millisecond
	}
	if oc.BuzzSpeedMaxMS != nil {
		p.BuzzSpeedMax = time.Duration(*oc.BuzzSpeedMaxMS) * time.Millisecond
	}
	if oc.ReadingFactor != nil {
		p.ReadingFactor = *oc.ReadingFactor
	}
	if oc.DailyDoubleStyle != "" {
		p.DailyDoubleStyle = opponent.WagerStyle(oc.DailyDoubleStyle)
	}
	if oc.FinalStyle != "" {
		p.FinalStyle = opponent.WagerStyle(oc.FinalStyle)
	}
	return p
}

// PinnedOpponents returns the two opponents named by game.opponents. ok is
// false when none are pinned and pairing follows the board.
func (c *Config) PinnedOpponents(roster *opponent.Roster) (a, b opponent.Profile, ok bool, err error) {
	ids := c.Game.Opponents
	if len(ids) == 0 {
		return a, b, false, nil
	}
	if len(ids) != 2 {
		return a, b, false, fmt.Errorf("game: opponents must name exactly 2 ids, got %d", len(ids))
	}
	if ids[0] == ids[1] {
		return a, b, false, fmt.Errorf("game: opponents must be distinct, got %q twice", ids[0])
	}
	var found bool
	if a, found = roster.Get(ids[0]); !found {
		return a, b, false, fmt.Errorf("game: unknown opponent %q", ids[0])
	}
	if b, found = roster.Get(ids[1]); !found {
		return a, b, false, fmt.Errorf("game: unknown opponent %q", ids[1])
	}
	return a, b, true, nil
}

// Engine returns the engine timings.
func (c *Config) Engine() engine.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return engine.Config{
		PlayerName:               c.Game.PlayerName,
		PlayerBio:                c.Game.PlayerBio,
		AnswerTimeout:            ms(c.Game.AnswerTimeoutMS),
		DailyDoubleAnswerTimeout: ms(c.Game.DailyDoubleAnswerTimeoutMS),
		FinalThinkTime:           ms(c.Game.FinalThinkTimeMS),
		WagerTimeout:             ms(c.Game.WagerTimeoutMS),
		PickDelay:                ms(c.Game.PickDelayMS),
	}
}

// ResultDelay is how long the terminal holds each clue result.
func (c *Config) ResultDelay() time.Duration {
	return time.Duration(c.Game.ResultDelayMS) * time.Millisecond
}

// StorageDir returns the configured storage directory, defaulting to a
// skylardle directory under the user config dir.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no storage dir configured: %w", err)
	}
	return filepath.Join(base, "skylardle"), nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
