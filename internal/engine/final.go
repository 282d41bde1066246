package engine

import (
	"context"

	"github.com/StevePic95/skylardle/internal/answer"
	"github.com/StevePic95/skylardle/internal/opponent"
)

// playFinal runs Final Jeopardy and ends the game. Everyone with money
// wagers and answers independently; scores change together once every
// decision is in.
func (e *Engine) playFinal(ctx context.Context, st *State) (*Results, error) {
	fc := st.Board.Final
	st.Phase = PhaseFinalCategory
	e.logger.Info("Final category", "category", fc.Category)
	if err := e.ui.NotifyFinalCategory(ctx, FinalCategory{
		Category:   fc.Category,
		Scoreboard: st.Scoreboard(),
	}); err != nil {
		return nil, err
	}

	entries := make(map[string]*FinalEntry, len(st.Players))
	for _, p := range st.Players {
		entries[p.ID] = &FinalEntry{Player: *p, Eligible: p.Score > 0}
	}
	human := entries[HumanID]

	if human.Eligible {
		wager, err := e.humanWager(ctx, WagerRequest{
			Kind:     FinalWager,
			Category: fc.Category,
			Score:    human.Score,
			Min:      0,
			Max:      human.Score,
		})
		if err != nil {
			return nil, err
		}
		human.Wager = wager
	}

	scores := st.scores()
	for _, prof := range st.Opponents {
		entry := entries[prof.ID]
		if entry.Eligible {
			entry.Wager = clamp(opponent.FinalWager(e.rng, prof, entry.Score, scores), 0, entry.Score)
		}
	}

	st.Phase = PhaseFinalClue
	if human.Eligible {
		response, err := e.humanAnswer(ctx, AnswerRequest{
			Category: fc.Category,
			Clue:     fc.Text,
			Value:    human.Wager,
			Final:    true,
			Budget:   e.cfg.FinalThinkTime,
		})
		if err != nil {
			return nil, err
		}
		human.Response = response
		human.Correct = answer.IsAccepted(response, fc.Accepted)
	}
	for _, prof := range st.Opponents {
		entry := entries[prof.ID]
		if entry.Eligible {
			entry.Correct = opponent.Correct(e.rng, prof, fc.Category)
		}
	}

	for _, p := range st.Players {
		entry := entries[p.ID]
		if entry.Correct {
			p.Score += entry.Wager
		} else {
			p.Score -= entry.Wager
		}
		entry.Score = p.Score
		e.logger.Info("Final judged", "player", p.ID, "eligible", entry.Eligible, "wager", entry.Wager, "correct", entry.Correct, "score", p.Score)
	}

	st.Phase = PhaseFinalReveal
	reveal := FinalReveal{
		Category: fc.Category,
		Clue:     fc.Text,
		Answer:   fc.Answer,
		Entries: []FinalEntry{
			*entries[st.Opponents[0].ID],
			*entries[st.Opponents[1].ID],
			*human,
		},
	}
	if err := e.ui.NotifyFinalReveal(ctx, reveal); err != nil {
		return nil, err
	}

	st.Phase = PhaseEnded
	res := buildResults(st, e.sched.Now())
	e.logger.Info("Game over", "winner", res.Winner.ID, "score", res.Winner.Score, "playerWon", res.PlayerWon, "tied", res.Tied)
	e.complete(res)

	if err := e.ui.NotifyResults(ctx, res); err != nil {
		return &res, err
	}
	return &res, nil
}

// complete records the finished game and drops the in-progress snapshot.
func (e *Engine) complete(res Results) {
	if e.store == nil {
		return
	}
	stats, err := e.store.RecordCompletion(res)
	if err != nil {
		e.logger.Warn("Failed to record completion", "error", err)
	} else {
		e.logger.Info("Stats updated", "wins", stats.Wins, "played", stats.GamesPlayed, "streak", stats.CurrentStreak)
	}
	e.clearSnapshot()
}
