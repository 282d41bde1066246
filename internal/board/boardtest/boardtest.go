// Package boardtest builds deterministic boards for tests.
package boardtest

import (
	"fmt"

	"github.com/StevePic95/skylardle/internal/board"
)

// ClueText is the text of every generated clue: five words, so a 1690ms
// reading time and a 3190ms buzz window.
const ClueText = "This clue has five words"

// WrongAnswer never matches a generated clue.
const WrongAnswer = "zzz qqq xxx"

var (
	singleCategories = []string{"Science", "History", "Movies", "Music", "Literature", "Sports"}
	doubleCategories = []string{"Geography", "Television", "Physics", "Food", "Mythology", "Video Games"}
)

// Option customises a generated board.
type Option func(*board.Board)

// WithDailyDoubles replaces the Daily Double cells of a board round.
func WithDailyDoubles(r board.Round, coords ...board.Coord) Option {
	return func(b *board.Board) {
		b.Round(r).DailyDoubles = coords
	}
}

// New returns a valid board. Daily Doubles sit at 0,4 in round one and at
// 1,4 and 2,4 in round two unless overridden.
func New(id int, opts ...Option) *board.Board {
	b := &board.Board{
		ID:     id,
		Single: round(board.Single, singleCategories, board.Coord{Col: 0, Row: 4}),
		Double: round(board.Double, doubleCategories, board.Coord{Col: 1, Row: 4}, board.Coord{Col: 2, Row: 4}),
		Final: board.FinalClue{
			Category: "World Capitals",
			Clue: board.Clue{
				Text:     "Its name means morning calm",
				Answer:   "What is Seoul?",
				Accepted: []string{"seoul"},
			},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Answer is the accepted answer of a generated cell.
func Answer(r board.Round, c board.Coord) string {
	return fmt.Sprintf("%s answer %c%c", r, 'a'+rune(c.Col), 'k'+rune(c.Row))
}

// AllBut returns every cell of a round except the given ones.
func AllBut(except ...board.Coord) board.CoordSet {
	skip := board.NewCoordSet(except...)
	out := board.NewCoordSet()
	for col := range board.Columns {
		for row := range board.Rows {
			c := board.Coord{Col: col, Row: row}
			if !skip.Has(c) {
				out.Add(c)
			}
		}
	}
	return out
}

func round(r board.Round, categories []string, dailyDoubles ...board.Coord) board.RoundData {
	grid := make([][]board.Clue, board.Columns)
	for col := range grid {
		grid[col] = make([]board.Clue, board.Rows)
		for row := range grid[col] {
			ans := Answer(r, board.Coord{Col: col, Row: row})
			grid[col][row] = board.Clue{
				Text:     ClueText,
				Answer:   "What is " + ans + "?",
				Accepted: []string{ans},
			}
		}
	}
	return board.RoundData{
		Categories:   append([]string(nil), categories...),
		Grid:         grid,
		DailyDoubles: dailyDoubles,
	}
}
