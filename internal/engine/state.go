package engine

import (
	"fmt"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/opponent"
	"github.com/google/uuid"
)

// HumanID is the participant id of the human contestant.
const HumanID = "player"

// Phase is the engine's position in the game state machine.
type Phase int

const (
	PhaseBoard Phase = iota
	PhaseClueSelected
	PhaseDailyDouble
	PhaseBuzzRace
	PhaseResolved
	PhaseRoundTransition
	PhaseFinalCategory
	PhaseFinalClue
	PhaseFinalReveal
	PhaseEnded
)

var phaseNames = [...]string{
	"board", "clue-selected", "daily-double", "buzz-race", "resolved",
	"round-transition", "final-category", "final-clue", "final-reveal", "ended",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Player is one contestant's scoreboard entry.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Human bool   `json:"isHuman"`
}

// ClueInPlay is the clue currently being resolved.
type ClueInPlay struct {
	Round       board.Round
	Coord       board.Coord
	Category    string
	Clue        board.Clue
	Value       int
	DailyDouble bool
}

// State is everything the engine knows about one game. It is owned by a
// single Run call and never shared.
type State struct {
	SessionID uuid.UUID
	Board     *board.Board
	Round     board.Round
	// Players are in registration order: human, opponent A, opponent B.
	Players   []*Player
	Opponents [2]opponent.Profile
	Picker    string
	Consumed  map[board.Round]board.CoordSet
	Current   *ClueInPlay
	Phase     Phase
	Resumed   bool
}

func newState(b *board.Board, humanName string, a, bb opponent.Profile) *State {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &State{
		SessionID: id,
		Board:     b,
		Round:     board.Single,
		Players: []*Player{
			{ID: HumanID, Name: humanName, Human: true},
			{ID: a.ID, Name: a.Name},
			{ID: bb.ID, Name: bb.Name},
		},
		Opponents: [2]opponent.Profile{a, bb},
		Picker:    HumanID,
		Consumed: map[board.Round]board.CoordSet{
			board.Single: board.NewCoordSet(),
			board.Double: board.NewCoordSet(),
		},
		Phase: PhaseBoard,
	}
}

// Player returns the participant with id, or nil.
func (s *State) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Profile returns the decision profile of an opponent.
func (s *State) Profile(id string) (opponent.Profile, bool) {
	for _, p := range s.Opponents {
		if p.ID == id {
			return p, true
		}
	}
	return opponent.Profile{}, false
}

// CluesRemaining counts unconsumed cells in the current board round.
func (s *State) CluesRemaining() int {
	if s.Round == board.Final {
		return 0
	}
	return board.CluesPerRound - s.Consumed[s.Round].Len()
}

// Scoreboard returns a copy of every player in registration order.
func (s *State) Scoreboard() []Player {
	out := make([]Player, len(s.Players))
	for i, p := range s.Players {
		out[i] = *p
	}
	return out
}

func (s *State) scores() []int {
	out := make([]int, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Score
	}
	return out
}

// Snapshot is the minimal persisted form of a game in progress.
type Snapshot struct {
	BoardID  int                            `json:"boardId"`
	Round    board.Round                    `json:"round"`
	Scores   map[string]int                 `json:"scores"`
	Picker   string                         `json:"currentPicker"`
	Consumed map[board.Round]board.CoordSet `json:"usedClues"`
}

// Snapshot captures the resumable part of the state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		BoardID:  s.Board.ID,
		Round:    s.Round,
		Scores:   make(map[string]int, len(s.Players)),
		Picker:   s.Picker,
		Consumed: make(map[board.Round]board.CoordSet, len(s.Consumed)),
	}
	for _, p := range s.Players {
		snap.Scores[p.ID] = p.Score
	}
	for r, set := range s.Consumed {
		snap.Consumed[r] = set.Clone()
	}
	return snap
}

// restore applies a snapshot taken on the same board. It reports why the
// snapshot cannot be used, leaving the state untouched in that case.
func (s *State) restore(snap *Snapshot) error {
	if snap.BoardID != s.Board.ID {
		return fmt.Errorf("snapshot is for board %d, not %d", snap.BoardID, s.Board.ID)
	}
	if snap.Round < board.Single || snap.Round > board.Final {
		return fmt.Errorf("snapshot has invalid round %d", int(snap.Round))
	}
	if s.Player(snap.Picker) == nil {
		return fmt.Errorf("snapshot picker %q is not playing", snap.Picker)
	}
	for r, set := range snap.Consumed {
		for c := range set {
			if !c.Valid() {
				return fmt.Errorf("snapshot has off-grid clue %s in %s", c, r)
			}
		}
	}

	for _, p := range s.Players {
		p.Score = snap.Scores[p.ID]
	}
	s.Round = snap.Round
	s.Picker = snap.Picker
	for _, r := range []board.Round{board.Single, board.Double} {
		s.Consumed[r] = snap.Consumed[r].Clone()
	}
	s.Resumed = true
	return nil
}
