// Package board holds the read-only clue data a game is played on: two 6x5
// board rounds with their Daily Double cells and a single Final clue.
package board

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	Columns       = 6
	Rows          = 5
	CluesPerRound = Columns * Rows
)

// Round identifies a stage of the game.
type Round int

const (
	Single Round = iota // round one, $200-$1000
	Double              // round two, $400-$2000
	Final
)

var roundNames = [...]string{"single", "double", "final"}

func (r Round) String() string {
	if r < Single || r > Final {
		return fmt.Sprintf("Round(%d)", int(r))
	}
	return roundNames[r]
}

// Label is the on-screen title of the round.
func (r Round) Label() string {
	switch r {
	case Single:
		return "Jeopardy!"
	case Double:
		return "Double Jeopardy!"
	case Final:
		return "Final Jeopardy!"
	default:
		return r.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Round) MarshalText() ([]byte, error) {
	if r < Single || r > Final {
		return nil, fmt.Errorf("invalid round %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Round) UnmarshalText(b []byte) error {
	i := slices.Index(roundNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown round %q", b)
	}
	*r = Round(i)
	return nil
}

var rowValues = map[Round][Rows]int{
	Single: {200, 400, 600, 800, 1000},
	Double: {400, 800, 1200, 1600, 2000},
}

// Values returns the dollar value of each row in a board round.
func (r Round) Values() []int {
	v, ok := rowValues[r]
	if !ok {
		return nil
	}
	return v[:]
}

// Value returns the dollar value of a row, or 0 outside a board round.
func (r Round) Value(row int) int {
	v, ok := rowValues[r]
	if !ok || row < 0 || row >= Rows {
		return 0
	}
	return v[row]
}

// DailyDoubleCap is the wager ceiling for a contestant with less money than it.
func (r Round) DailyDoubleCap() int {
	if r == Double {
		return 2000
	}
	return 1000
}

// DailyDoubleCount is how many Daily Doubles a well-formed round hides.
func (r Round) DailyDoubleCount() int {
	switch r {
	case Single:
		return 1
	case Double:
		return 2
	default:
		return 0
	}
}

// Coord addresses a cell by category column and value row, both zero based.
// It is written as [col,row] in board files and "col,row" as text.
type Coord struct {
	Col int
	Row int
}

// Valid reports whether the coordinate lies on a 6x5 grid.
func (c Coord) Valid() bool {
	return c.Col >= 0 && c.Col < Columns && c.Row >= 0 && c.Row < Rows
}

func (c Coord) String() string {
	return strconv.Itoa(c.Col) + "," + strconv.Itoa(c.Row)
}

// ParseCoord parses the "col,row" form.
func ParseCoord(s string) (Coord, error) {
	colText, rowText, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Coord{}, fmt.Errorf("coordinate %q: want col,row", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colText))
	if err != nil {
		return Coord{}, fmt.Errorf("coordinate %q: column: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowText))
	if err != nil {
		return Coord{}, fmt.Errorf("coordinate %q: row: %w", s, err)
	}
	return Coord{Col: col, Row: row}, nil
}

// MarshalJSON writes the coordinate as a two element array.
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Col, c.Row})
}

// UnmarshalJSON accepts [col,row] or "col,row".
func (c *Coord) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate %s: want 2 elements, got %d", b, len(pair))
		}
		*c = Coord{Col: pair[0], Row: pair[1]}
		return nil
	}

	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return fmt.Errorf("coordinate %s: %w", b, err)
	}
	parsed, err := ParseCoord(text)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CoordSet is a set of consumed cells.
type CoordSet map[Coord]struct{}

// NewCoordSet returns a set holding coords.
func NewCoordSet(coords ...Coord) CoordSet {
	s := make(CoordSet, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set. A nil set is empty.
func (s CoordSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// Add inserts c.
func (s CoordSet) Add(c Coord) {
	s[c] = struct{}{}
}

// Len returns the number of cells in the set.
func (s CoordSet) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s CoordSet) Clone() CoordSet {
	out := make(CoordSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the cells ordered by column then row.
func (s CoordSet) Sorted() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Coord) int {
		if a.Col != b.Col {
			return a.Col - b.Col
		}
		return a.Row - b.Row
	})
	return out
}

// MarshalJSON writes the set as a sorted array of coordinates.
func (s CoordSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads an array of coordinates.
func (s *CoordSet) UnmarshalJSON(b []byte) error {
	var coords []Coord
	if err := json.Unmarshal(b, &coords); err != nil {
		return err
	}
	*s = NewCoordSet(coords...)
	return nil
}

// Clue is one cell of a board, or the Final clue body.
type Clue struct {
	Text     string   `json:"clue"`
	Answer   string   `json:"answer"`
	Accepted []string `json:"acceptedAnswers"`
}

// RoundData is the content of one board round. Grid is indexed [col][row].
type RoundData struct {
	Categories   []string `json:"categories"`
	Grid         [][]Clue `json:"board"`
	DailyDoubles []Coord  `json:"dailyDoubles"`
}

// Clue returns the clue at c. The caller guarantees c is valid.
func (rd *RoundData) Clue(c Coord) Clue {
	return rd.Grid[c.Col][c.Row]
}

// IsDailyDouble reports whether c hides a Daily Double.
func (rd *RoundData) IsDailyDouble(c Coord) bool {
	return slices.Contains(rd.DailyDoubles, c)
}

// FinalClue is the closing clue with its category.
type FinalClue struct {
	Category string `json:"category"`
	Clue
}

// Board is a complete game's worth of clues.
type Board struct {
	ID     int       `json:"id"`
	Single RoundData `json:"single"`
	Double RoundData `json:"double"`
	Final  FinalClue `json:"final"`
}

// Round returns the data for a board round, or nil for Final.
func (b *Board) Round(r Round) *RoundData {
	switch r {
	case Single:
		return &b.Single
	case Double:
		return &b.Double
	default:
		return nil
	}
}
