package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/engine"
)

// FormatMoney renders a score the way the host reads it: $1,200 or -$400.
func FormatMoney(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.Itoa(v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

func formatGameStart(start engine.GameStart) []string {
	if start.Resumed {
		return []string{
			fmt.Sprintf("Welcome back! Picking up board #%d in %s", start.BoardID, start.Round.Label()),
			"",
		}
	}
	lines := []string{fmt.Sprintf("This is Skylardle! Board #%d", start.BoardID), ""}
	for _, c := range start.Contestants {
		lines = append(lines, fmt.Sprintf("  %s, %s", c.Name, c.Bio))
	}
	return append(lines, "")
}

func formatClueSelected(sel engine.ClueSelected) []string {
	clue := sel.Clue
	lines := []string{
		fmt.Sprintf("%s: %s for %s", sel.Picker.Name, clue.Category, FormatMoney(clue.Value)),
	}
	if clue.DailyDouble {
		lines = append(lines, WarningStyle.Render("*** DAILY DOUBLE ***"))
	}
	return append(lines, ClueStyle.Render(clue.Clue.Text))
}

func formatResult(res engine.ClueResult) []string {
	var lines []string
	switch {
	case res.PlayerID == "":
		lines = append(lines, InfoStyle.Render("Time's up!"))
	case res.Correct:
		line := fmt.Sprintf("%s: correct! +%s", res.Name, FormatMoney(res.Delta))
		if res.Response != "" {
			line = fmt.Sprintf("%s: %q is correct! +%s", res.Name, res.Response, FormatMoney(res.Delta))
		}
		lines = append(lines, SuccessStyle.Render(line))
	default:
		line := fmt.Sprintf("%s: incorrect. %s", res.Name, FormatMoney(res.Delta))
		if res.Response != "" {
			line = fmt.Sprintf("%s: %q is incorrect. %s", res.Name, res.Response, FormatMoney(res.Delta))
		}
		lines = append(lines, ErrorStyle.Render(line))
	}
	if res.Answer != "" && !res.Correct {
		lines = append(lines, fmt.Sprintf("The correct response: %s", res.Answer))
	}
	return lines
}

func formatTransition(tr engine.RoundTransition, pickerName string) []string {
	lines := []string{"", HeaderStyle.Render(tr.To.Label())}
	if tr.To != board.Final {
		lines = append(lines, fmt.Sprintf("%s has the lowest score and picks first.", pickerName))
	}
	return append(lines, "")
}

func formatFinalCategory(fc engine.FinalCategory) []string {
	return []string{
		fmt.Sprintf("The Final category is: %s", CategoryStyle.Render(fc.Category)),
	}
}

func formatFinalReveal(rev engine.FinalReveal) []string {
	lines := []string{ClueStyle.Render(rev.Clue), ""}
	for _, e := range rev.Entries {
		if !e.Eligible {
			lines = append(lines, InfoStyle.Render(fmt.Sprintf("%s sits out with %s", e.Name, FormatMoney(e.Score))))
			continue
		}
		verdict := ErrorStyle.Render("incorrect")
		if e.Correct {
			verdict = SuccessStyle.Render("correct")
		}
		response := ""
		if e.Response != "" {
			response = fmt.Sprintf(" %q", e.Response)
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s, wagered %s, now %s",
			e.Name, response, verdict, FormatMoney(e.Wager), FormatMoney(e.Score)))
	}
	return append(lines, fmt.Sprintf("The correct response: %s", rev.Answer), "")
}

// FormatResults lists the winner line then the standings.
func FormatResults(res engine.Results) []string {
	var lines []string
	switch {
	case res.PlayerWon && res.Tied:
		lines = append(lines, SuccessStyle.Render("A tie at the top, and you take it!"))
	case res.PlayerWon:
		lines = append(lines, SuccessStyle.Render("You win!"))
	default:
		lines = append(lines, fmt.Sprintf("%s wins with %s.", res.Winner.Name, FormatMoney(res.Winner.Score)))
	}
	for i, s := range res.Standings {
		lines = append(lines, fmt.Sprintf("  %d. %-20s %s", i+1, s.Name, FormatMoney(s.Score)))
	}
	return lines
}

var (
	errPickFormat = errors.New(`pick as "<category 1-6> <row 1-5>", e.g. "3 2"`)
	errNotNumber  = errors.New("enter a whole dollar amount")
)

// ParsePick reads a 1-based "<category> <row>" pair. Commas work as
// separators too.
func ParsePick(input string) (board.Coord, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 2 {
		return board.Coord{}, errPickFormat
	}
	col, err := strconv.Atoi(fields[0])
	if err != nil {
		return board.Coord{}, errPickFormat
	}
	row, err := strconv.Atoi(fields[1])
	if err != nil {
		return board.Coord{}, errPickFormat
	}
	c := board.Coord{Col: col - 1, Row: row - 1}
	if !c.Valid() {
		return board.Coord{}, fmt.Errorf("no clue at category %d row %d", col, row)
	}
	return c, nil
}

// ParseWager reads a dollar amount within [lo, hi]. "$" and thousands
// separators are ignored.
func ParseWager(input string, lo, hi int) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(input)
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, errNotNumber
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("wager must be between %s and %s", FormatMoney(lo), FormatMoney(hi))
	}
	return v, nil
}
