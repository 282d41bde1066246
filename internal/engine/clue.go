package engine

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/StevePic95/skylardle/internal/answer"
	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/opponent"
	"github.com/StevePic95/skylardle/internal/pause"
)

// errBudgetExpired is the cancellation cause of an input whose time ran out.
var errBudgetExpired = errors.New("input time budget expired")

const minDailyDoubleWager = 5

func (e *Engine) playClue(ctx context.Context, st *State, coord board.Coord) error {
	rd := st.Board.Round(st.Round)
	clue := ClueInPlay{
		Round:       st.Round,
		Coord:       coord,
		Category:    rd.Categories[coord.Col],
		Clue:        rd.Clue(coord),
		Value:       st.Round.Value(coord.Row),
		DailyDouble: rd.IsDailyDouble(coord),
	}

	st.Consumed[st.Round].Add(coord)
	st.Current = &clue
	st.Phase = PhaseClueSelected
	e.logger.Info("Clue selected",
		"round", st.Round,
		"clue", coord,
		"category", clue.Category,
		"value", clue.Value,
		"picker", st.Picker,
		"dailyDouble", clue.DailyDouble,
		"remaining", st.CluesRemaining())

	picker := *st.Player(st.Picker)
	if err := e.ui.NotifyClueSelected(ctx, ClueSelected{
		Picker:     picker,
		Clue:       clue,
		Remaining:  st.CluesRemaining(),
		Scoreboard: st.Scoreboard(),
	}); err != nil {
		return err
	}

	var err error
	if clue.DailyDouble {
		err = e.dailyDouble(ctx, st, clue)
	} else {
		err = e.buzzRace(ctx, st, clue)
	}
	if err != nil {
		return err
	}

	st.Current = nil
	st.Phase = PhaseResolved
	e.persist(st)
	return nil
}

// dailyDouble lets the picker alone wager and answer.
func (e *Engine) dailyDouble(ctx context.Context, st *State, clue ClueInPlay) error {
	st.Phase = PhaseDailyDouble
	p := st.Player(st.Picker)
	maxWager := max(p.Score, st.Round.DailyDoubleCap())

	var (
		wager    int
		correct  bool
		response string
	)
	if p.Human {
		amount, err := e.humanWager(ctx, WagerRequest{
			Kind:     DailyDoubleWager,
			Category: clue.Category,
			Score:    p.Score,
			Min:      minDailyDoubleWager,
			Max:      maxWager,
		})
		if err != nil {
			return err
		}
		wager = amount

		response, err = e.humanAnswer(ctx, AnswerRequest{
			Category:    clue.Category,
			Clue:        clue.Clue.Text,
			Value:       wager,
			DailyDouble: true,
			Budget:      e.cfg.DailyDoubleAnswerTimeout,
		})
		if err != nil {
			return err
		}
		correct = answer.IsAccepted(response, clue.Clue.Accepted)
	} else {
		prof, _ := st.Profile(p.ID)
		wager = clamp(opponent.DailyDoubleWager(e.rng, prof, p.Score, maxWager), minDailyDoubleWager, maxWager)
		correct = opponent.Correct(e.rng, prof, clue.Category)
	}

	delta := wager
	if !correct {
		delta = -wager
	}
	p.Score += delta
	e.logger.Info("Daily Double resolved", "player", p.ID, "wager", wager, "correct", correct, "score", p.Score)
	e.persist(st)

	res := ClueResult{
		Clue:       clue,
		PlayerID:   p.ID,
		Name:       p.Name,
		Response:   response,
		Correct:    correct,
		Wager:      wager,
		Delta:      delta,
		Scoreboard: st.Scoreboard(),
	}
	if p.Human || correct {
		res.Answer = clue.Clue.Answer
	}
	return e.ui.NotifyClueResult(ctx, res)
}

// buzzRace races every eligible contestant until someone answers correctly,
// nobody buzzes, or everybody has missed.
func (e *Engine) buzzRace(ctx context.Context, st *State, clue ClueInPlay) error {
	eligible := make([]string, len(st.Players))
	for i, p := range st.Players {
		eligible[i] = p.ID
	}

	for attempt := 1; ; attempt++ {
		st.Phase = PhaseBuzzRace
		buzzer, err := e.race(ctx, st, clue, eligible, attempt)
		if err != nil {
			return err
		}
		if buzzer == "" {
			e.logger.Info("Nobody buzzed", "clue", clue.Coord, "attempt", attempt)
			return e.reveal(ctx, st, clue)
		}

		eligible = slices.DeleteFunc(eligible, func(id string) bool { return id == buzzer })
		correct, err := e.respond(ctx, st, clue, buzzer)
		if err != nil {
			return err
		}
		if correct {
			return nil
		}
		if len(eligible) == 0 {
			return e.reveal(ctx, st, clue)
		}
	}
}

// respond judges the buzzer's response and scores it.
func (e *Engine) respond(ctx context.Context, st *State, clue ClueInPlay, id string) (bool, error) {
	p := st.Player(id)

	var (
		correct  bool
		response string
	)
	if p.Human {
		var err error
		response, err = e.humanAnswer(ctx, AnswerRequest{
			Category: clue.Category,
			Clue:     clue.Clue.Text,
			Value:    clue.Value,
			Budget:   e.cfg.AnswerTimeout,
		})
		if err != nil {
			return false, err
		}
		correct = answer.IsAccepted(response, clue.Clue.Accepted)
	} else {
		prof, _ := st.Profile(id)
		correct = opponent.Correct(e.rng, prof, clue.Category)
	}

	delta := clue.Value
	if !correct {
		delta = -clue.Value
	}
	p.Score += delta
	if correct {
		st.Picker = p.ID
	}
	e.logger.Info("Response judged", "player", p.ID, "correct", correct, "delta", delta, "score", p.Score)
	e.persist(st)

	res := ClueResult{
		Clue:       clue,
		PlayerID:   p.ID,
		Name:       p.Name,
		Response:   response,
		Correct:    correct,
		Delta:      delta,
		Scoreboard: st.Scoreboard(),
	}
	if p.Human || correct {
		res.Answer = clue.Clue.Answer
	}
	return correct, e.ui.NotifyClueResult(ctx, res)
}

// reveal shows the answer with no score change.
func (e *Engine) reveal(ctx context.Context, st *State, clue ClueInPlay) error {
	return e.ui.NotifyClueResult(ctx, ClueResult{
		Clue:       clue,
		Answer:     clue.Clue.Answer,
		Scoreboard: st.Scoreboard(),
	})
}

// race runs one buzz race among the eligible contestants and returns the id
// of whoever buzzed first, or "" when the window closed. Each opponent's
// decision is drawn fresh, so a re-opened race re-rolls everyone. Every
// timer of the race is cancelled before race returns.
func (e *Engine) race(ctx context.Context, st *State, clue ClueInPlay, eligible []string, attempt int) (string, error) {
	const nobody = ""

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Every sender posts at most once; the buffer means none of them block
	// after the race is decided.
	buzzes := make(chan string, len(eligible)+1)
	post := func(id string) {
		select {
		case buzzes <- id:
		default:
		}
	}

	var timers []*pause.Timer
	for _, id := range eligible {
		prof, ok := st.Profile(id)
		if !ok {
			continue
		}
		d := opponent.DecideBuzz(e.rng, prof, clue.Coord.Row, clue.Clue.Text)
		e.logger.Debug("Buzz decision", "player", id, "attempt", attempt, "willBuzz", d.WillBuzz, "delay", d.Delay)
		if d.WillBuzz {
			timers = append(timers, e.sched.After(d.Delay, func() { post(id) }))
		}
	}
	window := opponent.BuzzWindow(clue.Clue.Text)
	timers = append(timers, e.sched.After(window, func() { post(nobody) }))

	humanErr := make(chan error, 1)
	humanDone := make(chan struct{})
	canBuzz := slices.Contains(eligible, HumanID)
	go func() {
		defer close(humanDone)
		err := e.ui.RequestBuzz(raceCtx, BuzzPrompt{
			Clue:    clue,
			Window:  window,
			Attempt: attempt,
			CanBuzz: canBuzz,
		})
		switch {
		case raceCtx.Err() != nil:
		case err != nil:
			humanErr <- err
		case canBuzz:
			post(HumanID)
		}
	}()

	var (
		winner string
		err    error
	)
	select {
	case winner = <-buzzes:
	case err = <-humanErr:
	case <-ctx.Done():
		err = ctx.Err()
	}
	for _, t := range timers {
		t.Cancel()
	}
	cancel()
	<-humanDone

	if err == nil {
		e.logger.Debug("Buzz race decided", "clue", clue.Coord, "attempt", attempt, "winner", winner)
	}
	return winner, err
}

// withBudget derives a context that is cancelled with errBudgetExpired once
// d of unpaused time passes. A non-positive d never expires.
func (e *Engine) withBudget(ctx context.Context, d time.Duration) (context.Context, func()) {
	bctx, cancel := context.WithCancelCause(ctx)
	if d <= 0 {
		return bctx, func() { cancel(nil) }
	}
	t := e.sched.After(d, func() { cancel(errBudgetExpired) })
	return bctx, func() {
		t.Cancel()
		cancel(nil)
	}
}

func expired(parent, budgeted context.Context) bool {
	return parent.Err() == nil && errors.Is(context.Cause(budgeted), errBudgetExpired)
}

// humanAnswer collects a response. When the budget runs out whatever the
// presentation returns is taken as the submission.
func (e *Engine) humanAnswer(ctx context.Context, req AnswerRequest) (string, error) {
	actx, done := e.withBudget(ctx, req.Budget)
	defer done()

	text, err := e.ui.RequestAnswer(actx, req)
	if err != nil {
		if expired(ctx, actx) {
			e.logger.Info("Answer time expired", "submitted", text)
			return text, nil
		}
		return "", err
	}
	return text, nil
}

// humanWager collects a wager and clamps it to the request bounds. An
// expired budget wagers the minimum.
func (e *Engine) humanWager(ctx context.Context, req WagerRequest) (int, error) {
	wctx, done := e.withBudget(ctx, e.cfg.WagerTimeout)
	defer done()

	amount, err := e.ui.RequestWager(wctx, req)
	if err != nil {
		if expired(ctx, wctx) {
			e.logger.Info("Wager time expired", "kind", req.Kind, "wager", req.Min)
			return req.Min, nil
		}
		return 0, err
	}
	if clamped := clamp(amount, req.Min, req.Max); clamped != amount {
		e.logger.Debug("Wager clamped", "requested", amount, "wager", clamped)
		amount = clamped
	}
	return amount, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
