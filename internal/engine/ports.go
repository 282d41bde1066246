package engine

import (
	"context"
	"errors"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/google/uuid"
)

var (
	// ErrInvalidBoard is returned by Run when the board is structurally unusable.
	ErrInvalidBoard = errors.New("engine: invalid board")
	// ErrRestart may be returned by any Presentation method to abandon the
	// current game and start over on the same board.
	ErrRestart = errors.New("engine: restart requested")
	// ErrInvalidSelection is returned when the human picks a cell off the grid.
	ErrInvalidSelection = errors.New("engine: clue selection off the board")
)

// Presentation is everything the engine needs from whatever shows the game
// to the human. Every call blocks the engine until it returns. The engine
// withdraws a request by cancelling ctx; implementations must then return
// promptly.
type Presentation interface {
	// NotifyGameStart introduces the contestants, or welcomes the human back
	// to a resumed game.
	NotifyGameStart(ctx context.Context, start GameStart) error
	// RequestClueSelection asks the human picker for an unconsumed cell.
	RequestClueSelection(ctx context.Context, req SelectionRequest) (board.Coord, error)
	NotifyClueSelected(ctx context.Context, sel ClueSelected) error
	// RequestBuzz shows a clue during a buzz race. It returns nil when the
	// human buzzes and otherwise waits for ctx, which the engine cancels
	// once the race is decided. A nil return is ignored when CanBuzz is false.
	RequestBuzz(ctx context.Context, prompt BuzzPrompt) error
	// RequestWager asks the human for a wager within [Min, Max].
	RequestWager(ctx context.Context, req WagerRequest) (int, error)
	// RequestAnswer collects the human's response. When the time budget
	// expires ctx is cancelled; the implementation should then return the
	// text entered so far along with ctx's error, and it is judged as if
	// submitted.
	RequestAnswer(ctx context.Context, req AnswerRequest) (string, error)
	NotifyClueResult(ctx context.Context, res ClueResult) error
	NotifyRoundTransition(ctx context.Context, tr RoundTransition) error
	NotifyFinalCategory(ctx context.Context, fc FinalCategory) error
	NotifyFinalReveal(ctx context.Context, rev FinalReveal) error
	NotifyResults(ctx context.Context, res Results) error
}

// Persistence stores in-progress snapshots and completed games. Failures are
// logged and otherwise ignored by the engine.
type Persistence interface {
	SaveSnapshot(snap Snapshot) error
	// LoadSnapshot returns the stored snapshot for boardID, or nil.
	LoadSnapshot(boardID int) (*Snapshot, error)
	ClearSnapshot() error
	// RecordCompletion stores the results and returns the updated stats.
	RecordCompletion(res Results) (Stats, error)
}

// Contestant introduces a player.
type Contestant struct {
	Player
	Bio string
}

// GameStart opens a game.
type GameStart struct {
	SessionID   uuid.UUID
	BoardID     int
	Round       board.Round
	Resumed     bool
	Contestants []Contestant
}

// SelectionRequest describes the board the human picks from.
type SelectionRequest struct {
	Round      board.Round
	Categories []string
	Values     []int
	Consumed   board.CoordSet
	Scoreboard []Player
}

// ClueSelected announces the clue about to be played.
type ClueSelected struct {
	Picker     Player
	Clue       ClueInPlay
	Remaining  int
	Scoreboard []Player
}

// BuzzPrompt opens one buzz race. Attempt counts from 1 and grows after each
// incorrect response on the same clue.
type BuzzPrompt struct {
	Clue    ClueInPlay
	Window  time.Duration
	Attempt int
	CanBuzz bool
}

// WagerKind says what a wager is for.
type WagerKind int

const (
	DailyDoubleWager WagerKind = iota
	FinalWager
)

func (k WagerKind) String() string {
	if k == FinalWager {
		return "final"
	}
	return "daily-double"
}

// WagerRequest asks for an amount within [Min, Max].
type WagerRequest struct {
	Kind     WagerKind
	Category string
	Score    int
	Min      int
	Max      int
}

// AnswerRequest asks for a response to a clue within Budget. A zero budget
// is unbounded.
type AnswerRequest struct {
	Category    string
	Clue        string
	Value       int
	DailyDouble bool
	Final       bool
	Budget      time.Duration
}

// ClueResult reports one judged response, or the reveal when nobody
// answered correctly. PlayerID is empty when nobody buzzed or everybody
// missed. Answer is empty when an opponent missed and the clue stays open.
type ClueResult struct {
	Clue       ClueInPlay
	PlayerID   string
	Name       string
	Response   string
	Correct    bool
	Wager      int
	Delta      int
	Answer     string
	Scoreboard []Player
}

// RoundTransition announces a move to the next round.
type RoundTransition struct {
	From       board.Round
	To         board.Round
	Picker     string
	Scoreboard []Player
}

// FinalCategory reveals the Final category before wagers.
type FinalCategory struct {
	Category   string
	Scoreboard []Player
}

// FinalEntry is one contestant's Final outcome. Ineligible contestants had
// no money and neither wagered nor answered.
type FinalEntry struct {
	Player
	Eligible bool
	Wager    int
	Response string
	Correct  bool
}

// FinalReveal lists Final outcomes in reveal order: opponent A, opponent B,
// human. Scores in the entries are after the Final.
type FinalReveal struct {
	Category string
	Clue     string
	Answer   string
	Entries  []FinalEntry
}
