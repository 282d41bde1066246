// Package statistics aggregates the human's finished games for the stats
// screen.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/StevePic95/skylardle/internal/engine"
)

// OpponentStats tracks the human's record against one opponent.
type OpponentStats struct {
	Games    int
	Beaten   int     // Games the human finished strictly ahead
	SumScore float64 // Opponent's final scores
}

// Statistics accumulates finished games.
type Statistics struct {
	Games     int
	SumScore  float64
	SumScore2 float64   // Sum of squares for variance
	Scores    []float64 // Every final score, for median and percentiles

	Wins int
	Ties int // Games decided by registration order on a tied top score

	BestScore  int
	WorstScore int
	Negative   int // Games finished below zero

	Opponents map[string]*OpponentStats
}

// Summarize folds results into fresh statistics.
func Summarize(results []engine.Results) *Statistics {
	s := &Statistics{}
	for _, res := range results {
		s.Add(res)
	}
	return s
}

// Add incorporates one finished game.
func (s *Statistics) Add(res engine.Results) {
	score := res.PlayerScore
	if s.Games == 0 {
		s.BestScore, s.WorstScore = score, score
	} else {
		s.BestScore = max(s.BestScore, score)
		s.WorstScore = min(s.WorstScore, score)
	}

	s.Games++
	s.SumScore += float64(score)
	s.SumScore2 += float64(score) * float64(score)
	s.Scores = append(s.Scores, float64(score))

	if res.PlayerWon {
		s.Wins++
	}
	if res.Tied {
		s.Ties++
	}
	if score < 0 {
		s.Negative++
	}

	if s.Opponents == nil {
		s.Opponents = make(map[string]*OpponentStats)
	}
	for _, st := range res.Standings {
		if st.Human {
			continue
		}
		rec, ok := s.Opponents[st.ID]
		if !ok {
			rec = &OpponentStats{}
			s.Opponents[st.ID] = rec
		}
		rec.Games++
		rec.SumScore += float64(st.Score)
		if score > st.Score {
			rec.Beaten++
		}
	}
}

// WinRate returns the fraction of games won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// Mean returns the mean final score.
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumScore / float64(s.Games)
}

// Variance returns the sample variance of final scores.
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumScore2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of final scores.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median final score.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated score at p in [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Scores))
	copy(sorted, s.Scores)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// OpponentIDs returns the opponents faced, sorted.
func (s *Statistics) OpponentIDs() []string {
	ids := make([]string, 0, len(s.Opponents))
	for id := range s.Opponents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BeatRate returns how often the human finished ahead of opponent id.
func (s *Statistics) BeatRate(id string) float64 {
	rec, ok := s.Opponents[id]
	if !ok || rec.Games == 0 {
		return 0
	}
	return float64(rec.Beaten) / float64(rec.Games)
}

// Validate checks the counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Scores) != s.Games {
		return fmt.Errorf("scores length (%d) does not match games count (%d)", len(s.Scores), s.Games)
	}
	if s.Wins > s.Games {
		return fmt.Errorf("wins (%d) exceed games (%d)", s.Wins, s.Games)
	}
	faced := 0
	for id, rec := range s.Opponents {
		if rec.Beaten > rec.Games {
			return fmt.Errorf("beat %s %d times in %d games", id, rec.Beaten, rec.Games)
		}
		faced += rec.Games
	}
	// Two opponents per game.
	if faced != 2*s.Games {
		return fmt.Errorf("opponent games total (%d) is not twice the games count (%d)", faced, s.Games)
	}
	return nil
}
