// Package engine runs a game: it sequences rounds and clues, races the human
// against the simulated opponents on a pausable clock, scores responses and
// wagers, and snapshots progress so a game can be resumed the same day.
//
// All game state lives in a State owned by one Run call. Timer callbacks
// never touch it; they only post events the engine goroutine consumes, so
// no locking is needed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/opponent"
	"github.com/StevePic95/skylardle/internal/pause"
	"github.com/StevePic95/skylardle/internal/randutil"
	"github.com/charmbracelet/log"
)

// Config holds the human-facing timings of a game.
type Config struct {
	PlayerName string
	PlayerBio  string

	AnswerTimeout            time.Duration
	DailyDoubleAnswerTimeout time.Duration
	FinalThinkTime           time.Duration
	// WagerTimeout bounds wager entry. Zero waits indefinitely.
	WagerTimeout time.Duration
	// PickDelay paces opponent clue picks.
	PickDelay time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		PlayerName:               "Skylar",
		PlayerBio:                "a cute little industrial engineer from Bellmawr, New Jersey",
		AnswerTimeout:            6000 * time.Millisecond,
		DailyDoubleAnswerTimeout: 8000 * time.Millisecond,
		FinalThinkTime:           30000 * time.Millisecond,
		PickDelay:                1200 * time.Millisecond,
	}
}

// Engine plays games against two simulated opponents.
type Engine struct {
	logger *log.Logger
	rng    randutil.Rand
	sched  *pause.Scheduler
	ui     Presentation
	store  Persistence
	cfg    Config

	roster    *opponent.Roster
	opponents *[2]opponent.Profile
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default timings.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithRoster sets the roster opponents are paired from.
func WithRoster(r *opponent.Roster) Option {
	return func(e *Engine) { e.roster = r }
}

// WithOpponents fixes the two opponents instead of pairing them by board.
func WithOpponents(a, b opponent.Profile) Option {
	return func(e *Engine) { e.opponents = &[2]opponent.Profile{a, b} }
}

// New creates an engine. store may be nil to keep games in memory only.
func New(logger *log.Logger, rng randutil.Rand, sched *pause.Scheduler, ui Presentation, store Persistence, opts ...Option) *Engine {
	e := &Engine{
		logger: logger.WithPrefix("engine"),
		rng:    rng,
		sched:  sched,
		ui:     ui,
		store:  store,
		cfg:    DefaultConfig(),
		roster: opponent.DefaultRoster(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resume runs a game on b, continuing the stored snapshot when it belongs
// to the same board.
func (e *Engine) Resume(ctx context.Context, b *board.Board) (*Results, error) {
	var prior *Snapshot
	if e.store != nil && b != nil {
		snap, err := e.store.LoadSnapshot(b.ID)
		if err != nil {
			e.logger.Warn("Failed to load snapshot, starting fresh", "error", err)
		} else {
			prior = snap
		}
	}
	return e.Run(ctx, b, prior)
}

// Run plays a complete game on b and returns the results. A non-nil prior
// snapshot taken on the same board is resumed; any other snapshot is
// ignored. A Presentation returning ErrRestart starts the game over.
func (e *Engine) Run(ctx context.Context, b *board.Board, prior *Snapshot) (*Results, error) {
	if err := board.Validate(b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}
	a, bb, err := e.pairFor(b.ID)
	if err != nil {
		return nil, err
	}

	for {
		st := newState(b, e.cfg.PlayerName, a, bb)
		if prior != nil {
			if err := st.restore(prior); err != nil {
				e.logger.Warn("Ignoring saved game", "reason", err)
			}
		}

		res, err := e.play(ctx, st)
		if errors.Is(err, ErrRestart) && ctx.Err() == nil {
			cancelled := e.sched.CancelAll()
			e.clearSnapshot()
			e.logger.Info("Restarting game", "board", b.ID, "cancelledTimers", cancelled)
			prior = nil
			continue
		}
		return res, err
	}
}

func (e *Engine) pairFor(boardID int) (opponent.Profile, opponent.Profile, error) {
	var a, b opponent.Profile
	if e.opponents != nil {
		a, b = e.opponents[0], e.opponents[1]
	} else {
		var err error
		if a, b, err = e.roster.Pair(boardID); err != nil {
			return a, b, err
		}
	}
	if a.ID == b.ID || a.ID == HumanID || b.ID == HumanID {
		return a, b, fmt.Errorf("engine: opponents %q and %q need distinct ids other than %q", a.ID, b.ID, HumanID)
	}
	return a, b, nil
}

func (e *Engine) play(ctx context.Context, st *State) (*Results, error) {
	e.logger.Info("Game starting",
		"session", st.SessionID,
		"board", st.Board.ID,
		"round", st.Round,
		"resumed", st.Resumed,
		"opponents", []string{st.Opponents[0].ID, st.Opponents[1].ID})

	if err := e.ui.NotifyGameStart(ctx, e.gameStart(st)); err != nil {
		return nil, err
	}

	for st.Round != board.Final {
		if err := e.playRound(ctx, st); err != nil {
			return nil, err
		}
		if err := e.transition(ctx, st); err != nil {
			return nil, err
		}
	}
	return e.playFinal(ctx, st)
}

func (e *Engine) gameStart(st *State) GameStart {
	bios := map[string]string{HumanID: e.cfg.PlayerBio}
	for _, p := range st.Opponents {
		bios[p.ID] = p.Bio
	}
	start := GameStart{
		SessionID: st.SessionID,
		BoardID:   st.Board.ID,
		Round:     st.Round,
		Resumed:   st.Resumed,
	}
	for _, p := range st.Scoreboard() {
		start.Contestants = append(start.Contestants, Contestant{Player: p, Bio: bios[p.ID]})
	}
	return start
}

// playRound plays clues until the current board round is exhausted.
func (e *Engine) playRound(ctx context.Context, st *State) error {
	for st.CluesRemaining() > 0 {
		st.Phase = PhaseBoard
		coord, err := e.selectClue(ctx, st)
		if err != nil {
			return err
		}
		if err := e.playClue(ctx, st, coord); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) selectClue(ctx context.Context, st *State) (board.Coord, error) {
	rd := st.Board.Round(st.Round)
	if st.Picker == HumanID {
		coord, err := e.ui.RequestClueSelection(ctx, SelectionRequest{
			Round:      st.Round,
			Categories: rd.Categories,
			Values:     st.Round.Values(),
			Consumed:   st.Consumed[st.Round].Clone(),
			Scoreboard: st.Scoreboard(),
		})
		if err != nil {
			return board.Coord{}, err
		}
		if !coord.Valid() {
			return board.Coord{}, fmt.Errorf("%w: %s", ErrInvalidSelection, coord)
		}
		return coord, nil
	}

	if err := e.sched.Sleep(ctx, e.cfg.PickDelay); err != nil {
		return board.Coord{}, err
	}
	prof, _ := st.Profile(st.Picker)
	coord, ok := opponent.PickClue(e.rng, prof, rd.Categories, st.Consumed[st.Round])
	if !ok {
		return board.Coord{}, fmt.Errorf("engine: %s found no clue to pick in %s", st.Picker, st.Round)
	}
	return coord, nil
}

// transition moves from a finished board round to the next round.
func (e *Engine) transition(ctx context.Context, st *State) error {
	st.Phase = PhaseRoundTransition
	from := st.Round

	switch from {
	case board.Single:
		st.Round = board.Double
		st.Consumed[board.Double] = board.NewCoordSet()
		st.Picker = lowestScorer(st).ID
	case board.Double:
		st.Round = board.Final
	}

	e.logger.Info("Round transition", "from", from, "to", st.Round, "picker", st.Picker)
	e.persist(st)

	return e.ui.NotifyRoundTransition(ctx, RoundTransition{
		From:       from,
		To:         st.Round,
		Picker:     st.Picker,
		Scoreboard: st.Scoreboard(),
	})
}

// lowestScorer returns the player with the strictly lowest score, the
// earliest registered among equals.
func lowestScorer(st *State) *Player {
	low := st.Players[0]
	for _, p := range st.Players[1:] {
		if p.Score < low.Score {
			low = p
		}
	}
	return low
}

func (e *Engine) persist(st *State) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveSnapshot(st.Snapshot()); err != nil {
		e.logger.Warn("Failed to save snapshot", "error", err)
	}
}

func (e *Engine) clearSnapshot() {
	if e.store == nil {
		return
	}
	if err := e.store.ClearSnapshot(); err != nil {
		e.logger.Warn("Failed to clear snapshot", "error", err)
	}
}
