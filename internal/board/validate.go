package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/StevePic95/skylardle/internal/answer"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid board")

// Validate checks the structure a game relies on: six categories and a 6x5
// grid per board round, complete clues with at least one accepted answer,
// the expected number of in-grid Daily Doubles and a complete Final clue.
// All problems are reported together.
func Validate(b *Board) error {
	if b == nil {
		return fmt.Errorf("%w: no board", ErrInvalid)
	}

	var errs []error
	for _, r := range []Round{Single, Double} {
		errs = append(errs, validateRound(r, b.Round(r))...)
	}
	errs = append(errs, validateClue("final", b.Final.Clue)...)
	if strings.TrimSpace(b.Final.Category) == "" {
		errs = append(errs, errors.New("final: missing category"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %d: %w", ErrInvalid, b.ID, errors.Join(errs...))
	}
	return nil
}

func validateRound(r Round, rd *RoundData) []error {
	var errs []error
	if len(rd.Categories) != Columns {
		errs = append(errs, fmt.Errorf("%s: want %d categories, got %d", r, Columns, len(rd.Categories)))
	}
	for i, c := range rd.Categories {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Errorf("%s: category %d is empty", r, i))
		}
	}

	if len(rd.Grid) != Columns {
		errs = append(errs, fmt.Errorf("%s: want %d grid columns, got %d", r, Columns, len(rd.Grid)))
	}
	for col, clues := range rd.Grid {
		if len(clues) != Rows {
			errs = append(errs, fmt.Errorf("%s: column %d: want %d clues, got %d", r, col, Rows, len(clues)))
		}
		for row, clue := range clues {
			errs = append(errs, validateClue(fmt.Sprintf("%s %d,%d", r, col, row), clue)...)
		}
	}

	if want := r.DailyDoubleCount(); len(rd.DailyDoubles) != want {
		errs = append(errs, fmt.Errorf("%s: want %d daily doubles, got %d", r, want, len(rd.DailyDoubles)))
	}
	seen := NewCoordSet()
	for _, dd := range rd.DailyDoubles {
		if !dd.Valid() {
			errs = append(errs, fmt.Errorf("%s: daily double %s is off the grid", r, dd))
		}
		if seen.Has(dd) {
			errs = append(errs, fmt.Errorf("%s: daily double %s listed twice", r, dd))
		}
		seen.Add(dd)
	}
	return errs
}

func validateClue(where string, c Clue) []error {
	var errs []error
	if strings.TrimSpace(c.Text) == "" {
		errs = append(errs, fmt.Errorf("%s: missing clue text", where))
	}
	if strings.TrimSpace(c.Answer) == "" {
		errs = append(errs, fmt.Errorf("%s: missing answer", where))
	}
	if len(c.Accepted) == 0 {
		errs = append(errs, fmt.Errorf("%s: no accepted answers", where))
	}
	// The matcher never accepts anything against an answer that normalizes away.
	for _, a := range c.Accepted {
		if answer.Normalize(a) == "" {
			errs = append(errs, fmt.Errorf("%s: accepted answer %q has nothing to match", where, a))
		}
	}
	return errs
}
