package engine

import (
	"cmp"
	"slices"
	"time"
)

// Standing is a contestant's final placing.
type Standing struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Human bool   `json:"isHuman"`
}

// Results summarise a finished game.
type Results struct {
	SessionID   string     `json:"sessionId"`
	BoardID     int        `json:"boardId"`
	CompletedAt time.Time  `json:"completedAt"`
	PlayerWon   bool       `json:"playerWon"`
	PlayerScore int        `json:"playerScore"`
	Winner      Standing   `json:"winner"`
	Standings   []Standing `json:"allScores"`
	// Tied is set when more than one contestant finished on the top score.
	// The winner is then the earliest registered of them.
	Tied bool `json:"tied,omitempty"`
}

func buildResults(st *State, now time.Time) Results {
	standings := make([]Standing, len(st.Players))
	for i, p := range st.Players {
		standings[i] = Standing{ID: p.ID, Name: p.Name, Score: p.Score, Human: p.Human}
	}
	// Stable, so equal scores keep registration order.
	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})

	winner := standings[0]
	return Results{
		SessionID:   st.SessionID.String(),
		BoardID:     st.Board.ID,
		CompletedAt: now,
		PlayerWon:   winner.Human,
		PlayerScore: st.Player(HumanID).Score,
		Winner:      winner,
		Standings:   standings,
		Tied:        len(standings) > 1 && standings[1].Score == winner.Score,
	}
}

// Stats are the human's cumulative record across games.
type Stats struct {
	Wins          int `json:"wins"`
	GamesPlayed   int `json:"gamesPlayed"`
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
	HighScore     int `json:"highScore"`
}

// Record folds one finished game into the stats.
func (s Stats) Record(res Results) Stats {
	s.GamesPlayed++
	if res.PlayerWon {
		s.Wins++
		s.CurrentStreak++
		s.BestStreak = max(s.BestStreak, s.CurrentStreak)
	} else {
		s.CurrentStreak = 0
	}
	s.HighScore = max(s.HighScore, res.PlayerScore)
	return s
}
