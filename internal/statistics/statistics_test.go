package statistics

import (
	"testing"

	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(player int, opponents ...engine.Standing) engine.Results {
	standings := append([]engine.Standing{{ID: engine.HumanID, Score: player, Human: true}}, opponents...)
	won := true
	for _, o := range opponents {
		if o.Score > player {
			won = false
		}
	}
	return engine.Results{PlayerScore: player, PlayerWon: won, Standings: standings}
}

func opp(id string, score int) engine.Standing {
	return engine.Standing{ID: id, Score: score}
}

func TestStatistics_Empty(t *testing.T) {
	s := &Statistics{}

	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.9))
	assert.Zero(t, s.WinRate())
	assert.Zero(t, s.BeatRate("higgins"))
	assert.Error(t, s.Validate())
}

func TestStatistics_SingleGame(t *testing.T) {
	s := Summarize([]engine.Results{game(12400, opp("higgins", 8000), opp("buzzy", -1200))})

	assert.Equal(t, 1, s.Games)
	assert.Equal(t, 1, s.Wins)
	assert.InDelta(t, 12400.0, s.Mean(), 1e-9)
	assert.Zero(t, s.Variance())
	assert.Equal(t, 12400, s.BestScore)
	assert.Equal(t, 12400, s.WorstScore)
	assert.Equal(t, []string{"buzzy", "higgins"}, s.OpponentIDs())
	assert.InDelta(t, 1.0, s.BeatRate("higgins"), 1e-9)
	require.NoError(t, s.Validate())
}

func TestStatistics_MultipleGames(t *testing.T) {
	results := []engine.Results{
		game(1000, opp("higgins", 3000), opp("buzzy", 500)),
		game(-400, opp("higgins", 200), opp("trixie", 100)),
		game(3000, opp("buzzy", 2800), opp("trixie", 3000)),
		game(5000, opp("higgins", 0), opp("buzzy", 4000)),
	}
	results[2].Tied = true
	s := Summarize(results)

	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 2, s.Wins, "tie at 3000 counts as a win for the human")
	assert.Equal(t, 1, s.Ties)
	assert.Equal(t, 1, s.Negative)
	assert.InDelta(t, 0.5, s.WinRate(), 1e-9)
	assert.InDelta(t, 2150.0, s.Mean(), 1e-9)
	assert.Equal(t, 5000, s.BestScore)
	assert.Equal(t, -400, s.WorstScore)

	// Scores sorted: -400, 1000, 3000, 5000.
	assert.InDelta(t, 2000.0, s.Median(), 1e-9)
	assert.InDelta(t, -400.0, s.Percentile(0), 1e-9)
	assert.InDelta(t, 5000.0, s.Percentile(1), 1e-9)

	// Sum of squared deviations: 1150² + 2550² + 850² + 2850² = 16,670,000.
	assert.InDelta(t, 16670000.0/3, s.Variance(), 1e-6)
	lo, hi := s.ConfidenceInterval95()
	assert.InDelta(t, s.Mean(), (lo+hi)/2, 1e-9)
	assert.Greater(t, hi, lo)

	require.Contains(t, s.Opponents, "higgins")
	assert.Equal(t, 3, s.Opponents["higgins"].Games)
	assert.Equal(t, 1, s.Opponents["higgins"].Beaten)
	assert.InDelta(t, 1.0/3, s.BeatRate("higgins"), 1e-9)
	assert.Equal(t, 0, s.Opponents["trixie"].Beaten, "a tie is not beating them")

	require.NoError(t, s.Validate())
}

func TestStatistics_ValidateCatchesDrift(t *testing.T) {
	s := Summarize([]engine.Results{game(800, opp("higgins", 200), opp("buzzy", 100))})
	s.Scores = s.Scores[:0]
	assert.ErrorContains(t, s.Validate(), "scores length")

	s = Summarize([]engine.Results{game(800, opp("higgins", 200))})
	assert.ErrorContains(t, s.Validate(), "twice the games count")
}
