package opponent

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/randutil"
)

// Domain is the knowledge area a category falls into.
type Domain int

const (
	PopCulture Domain = iota
	Academic
)

func (d Domain) String() string {
	if d == Academic {
		return "academic"
	}
	return "pop-culture"
}

var academicKeywords = []string{
	"science", "history", "literature", "geography", "math", "philosophy",
	"language", "engineering", "chemistry", "physics", "biology", "astronomy",
	"medicine", "classical", "mythology", "american history", "world history",
	"industrial engineering",
}

// Classify returns Academic when the category contains any academic keyword,
// ignoring case. Everything else counts as pop culture.
func Classify(category string) Domain {
	lower := strings.ToLower(category)
	for _, kw := range academicKeywords {
		if strings.Contains(lower, kw) {
			return Academic
		}
	}
	return PopCulture
}

const (
	wordReadTime    = 338 * time.Millisecond
	minBuzzWindow   = 3000 * time.Millisecond
	buzzWindowSlack = 1500 * time.Millisecond
	rowPenalty      = 0.05
)

// ReadingTime is how long a person needs to read text, by word count.
func ReadingTime(text string) time.Duration {
	return time.Duration(len(strings.Fields(text))) * wordReadTime
}

// BuzzWindow is how long a buzz race stays open before nobody has buzzed.
func BuzzWindow(clueText string) time.Duration {
	return max(minBuzzWindow, ReadingTime(clueText)+buzzWindowSlack)
}

// BuzzDecision is an opponent's choice for one buzz race.
type BuzzDecision struct {
	WillBuzz bool
	Delay    time.Duration
}

// DecideBuzz rolls whether p buzzes on a clue in the given row and, if so,
// after how long. Higher rows lower the willingness to buzz.
func DecideBuzz(r randutil.Rand, p Profile, row int, clueText string) BuzzDecision {
	eagerness := p.BuzzEagerness - float64(row)*rowPenalty
	if !randutil.Chance(r, eagerness) {
		return BuzzDecision{}
	}

	floor := time.Duration(float64(ReadingTime(clueText)) * p.ReadingFactor)
	spread := p.BuzzSpeedMax - p.BuzzSpeedMin
	delay := max(floor, p.BuzzSpeedMin) + time.Duration(r.Float64()*float64(spread))
	return BuzzDecision{WillBuzz: true, Delay: delay}
}

// Correct rolls whether p answers a clue in category correctly.
func Correct(r randutil.Rand, p Profile, category string) bool {
	return randutil.Chance(r, p.Accuracy(Classify(category)))
}

// DailyDoubleWager sizes p's Daily Double wager. Scores below 1000 are
// treated as 1000, and the result is never below 5 or above maxWager.
func DailyDoubleWager(r randutil.Rand, p Profile, score, maxWager int) int {
	capped := min(max(score, 1000), maxWager)

	lo, hi := 0.25, 0.40
	if p.DailyDoubleStyle == Bold {
		lo, hi = 0.8, 1.0
	}
	wager := int(math.Floor(float64(capped) * randutil.Uniform(r, lo, hi)))
	return max(5, wager)
}

// FinalWager sizes p's Final wager given its score and every contestant's
// score (its own included). Non-positive scores never wager.
func FinalWager(r randutil.Rand, p Profile, score int, scores []int) int {
	if score <= 0 {
		return 0
	}

	sorted := slices.Clone(scores)
	slices.SortFunc(sorted, func(a, b int) int { return b - a })
	leader := score
	if len(sorted) > 0 {
		leader = sorted[0]
	}
	second := 0
	if len(sorted) > 1 {
		second = sorted[1]
	}

	switch p.FinalStyle {
	case Strategic:
		// A strict leader covers second place doubling up.
		if score == leader && second < leader && second > 0 {
			return min(max(0, 2*second-score+1), score)
		}
		needed := leader - score
		if needed > score {
			return score / 10
		}
		return min(needed+1, score)
	case Chaotic:
		return r.IntN(score + 1)
	default:
		return score / 2
	}
}

// PickClue chooses an unconsumed cell, favouring higher rows and categories
// in p's stronger domain. ok is false when every cell is consumed.
func PickClue(r randutil.Rand, p Profile, categories []string, consumed board.CoordSet) (c board.Coord, ok bool) {
	strong, hasStrong := p.StrongDomain()

	type candidate struct {
		coord  board.Coord
		weight float64
	}
	var available []candidate
	total := 0.0
	for col, category := range categories {
		preferred := hasStrong && Classify(category) == strong
		for row := range board.Rows {
			coord := board.Coord{Col: col, Row: row}
			if consumed.Has(coord) {
				continue
			}
			w := float64(row + 1)
			if preferred {
				w *= 1.5
			}
			available = append(available, candidate{coord, w})
			total += w
		}
	}
	if len(available) == 0 {
		return board.Coord{}, false
	}

	x := r.Float64() * total
	for _, cand := range available {
		x -= cand.weight
		if x <= 0 {
			return cand.coord, true
		}
	}
	return available[len(available)-1].coord, true
}
