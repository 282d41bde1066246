package tui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/pause"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

const pickLabel = "Pick a clue"

// Bridge implements engine.Presentation by posting prompts and log lines to
// a running Model and waiting on its replies.
type Bridge struct {
	logger      *log.Logger
	sched       *pause.Scheduler
	resultDelay time.Duration

	mu   sync.Mutex
	send func(tea.Msg)

	restart chan struct{}
	nextID  atomic.Int64

	// Touched only from the engine goroutine.
	names     map[string]string
	remaining int
}

var _ engine.Presentation = (*Bridge)(nil)

// NewBridge creates a bridge. Clue results, transitions and the Final
// category are held on screen for resultDelay of unpaused time.
func NewBridge(logger *log.Logger, sched *pause.Scheduler, resultDelay time.Duration) *Bridge {
	return &Bridge{
		logger:      logger.WithPrefix("bridge"),
		sched:       sched,
		resultDelay: resultDelay,
		send:        func(tea.Msg) {},
		restart:     make(chan struct{}, 1),
		names:       map[string]string{},
	}
}

// Attach routes the bridge's messages to send, usually a tea.Program's Send,
// and mirrors the scheduler's pause state onto the screen.
func (b *Bridge) Attach(send func(tea.Msg)) (detach func()) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
	return b.sched.OnPauseChange(func(paused bool) { b.post(pausedMsg{paused: paused}) })
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	send(msg)
}

func (b *Bridge) log(lines ...string) {
	b.post(logMsg{lines: lines})
}

// RequestRestart asks the engine to abandon the current game. The request
// is delivered at the next prompt or hold.
func (b *Bridge) RequestRestart() {
	select {
	case b.restart <- struct{}{}:
	default:
	}
}

// Quit stops the program.
func (b *Bridge) Quit() {
	b.post(QuitMsg{})
}

// ask shows p and waits for its reply.
func (b *Bridge) ask(ctx context.Context, p *prompt) (string, error) {
	p.id = int(b.nextID.Add(1))
	p.reply = make(chan string, 1)
	b.post(promptMsg{p: p})
	defer b.post(clearPromptMsg{id: p.id})

	select {
	case text := <-p.reply:
		return text, nil
	case <-b.restart:
		return "", engine.ErrRestart
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// hold keeps the screen for d of unpaused time.
func (b *Bridge) hold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-b.restart:
			return engine.ErrRestart
		default:
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	t := b.sched.After(d, func() { close(done) })
	defer t.Cancel()

	select {
	case <-done:
		return nil
	case <-b.restart:
		return engine.ErrRestart
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scoreboard refreshes the sidebar. A negative remaining keeps the last count.
func (b *Bridge) scoreboard(round board.Round, remaining int, players []engine.Player) {
	for _, p := range players {
		b.names[p.ID] = p.Name
	}
	if remaining < 0 {
		remaining = b.remaining
	}
	b.remaining = remaining
	b.post(scoreboardMsg{round: round, remaining: remaining, players: players})
}

// NotifyGameStart implements engine.Presentation.
func (b *Bridge) NotifyGameStart(ctx context.Context, start engine.GameStart) error {
	// A restart requested before this game began is spent.
	select {
	case <-b.restart:
	default:
	}

	players := make([]engine.Player, len(start.Contestants))
	for i, c := range start.Contestants {
		players[i] = c.Player
	}
	b.scoreboard(start.Round, board.CluesPerRound, players)
	b.log(formatGameStart(start)...)
	b.logger.Info("Game shown", "session", start.SessionID, "board", start.BoardID, "resumed", start.Resumed)
	return b.hold(ctx, b.resultDelay)
}

// RequestClueSelection implements engine.Presentation. Input is re-prompted
// until it names an open cell.
func (b *Bridge) RequestClueSelection(ctx context.Context, req engine.SelectionRequest) (board.Coord, error) {
	b.post(boardMsg{req: &req})
	defer b.post(boardMsg{})

	for {
		text, err := b.ask(ctx, &prompt{
			kind:        promptLine,
			label:       pickLabel,
			placeholder: "category row, e.g. 3 2",
		})
		if err != nil {
			return board.Coord{}, err
		}
		c, err := ParsePick(text)
		if err != nil {
			b.log(ErrorStyle.Render(err.Error()))
			continue
		}
		if req.Consumed.Has(c) {
			b.log(ErrorStyle.Render(fmt.Sprintf("%s for %s is already gone", req.Categories[c.Col], FormatMoney(req.Values[c.Row]))))
			continue
		}
		return c, nil
	}
}

// NotifyClueSelected implements engine.Presentation.
func (b *Bridge) NotifyClueSelected(ctx context.Context, sel engine.ClueSelected) error {
	b.scoreboard(sel.Clue.Round, sel.Remaining, sel.Scoreboard)
	b.log(formatClueSelected(sel)...)
	return ctx.Err()
}

// RequestBuzz implements engine.Presentation.
func (b *Bridge) RequestBuzz(ctx context.Context, bp engine.BuzzPrompt) error {
	if !bp.CanBuzz {
		_, err := b.ask(ctx, &prompt{kind: promptWait, label: "Waiting for the others..."})
		return err
	}
	label := fmt.Sprintf("Buzz in! (%.1fs)", bp.Window.Seconds())
	if bp.Attempt > 1 {
		label = "The clue is open again. Buzz in!"
	}
	_, err := b.ask(ctx, &prompt{kind: promptBuzz, label: label})
	return err
}

// RequestWager implements engine.Presentation.
func (b *Bridge) RequestWager(ctx context.Context, req engine.WagerRequest) (int, error) {
	label := fmt.Sprintf("Daily Double wager in %s (%s to %s)", req.Category, FormatMoney(req.Min), FormatMoney(req.Max))
	if req.Kind == engine.FinalWager {
		label = fmt.Sprintf("Final wager in %s (%s to %s)", req.Category, FormatMoney(req.Min), FormatMoney(req.Max))
	}
	for {
		text, err := b.ask(ctx, &prompt{kind: promptLine, label: label, placeholder: FormatMoney(req.Max)})
		if err != nil {
			return 0, err
		}
		v, err := ParseWager(text, req.Min, req.Max)
		if err != nil {
			b.log(ErrorStyle.Render(err.Error()))
			continue
		}
		return v, nil
	}
}

// RequestAnswer implements engine.Presentation. When ctx ends the draft
// typed so far is returned with ctx's error.
func (b *Bridge) RequestAnswer(ctx context.Context, req engine.AnswerRequest) (string, error) {
	label := fmt.Sprintf("Your response (%ds)", int(req.Budget.Seconds()))
	if req.Budget <= 0 {
		label = "Your response"
	}
	d := &draft{}
	text, err := b.ask(ctx, &prompt{
		kind:        promptLine,
		label:       label,
		placeholder: "What is ...?",
		draft:       d,
	})
	if err != nil {
		return d.get(), err
	}
	return text, nil
}

// NotifyClueResult implements engine.Presentation.
func (b *Bridge) NotifyClueResult(ctx context.Context, res engine.ClueResult) error {
	b.scoreboard(res.Clue.Round, -1, res.Scoreboard)
	b.log(formatResult(res)...)
	// Misses leave the clue open; the next race starts right away.
	if res.PlayerID != "" && !res.Correct && res.Answer == "" {
		return ctx.Err()
	}
	return b.hold(ctx, b.resultDelay)
}

// NotifyRoundTransition implements engine.Presentation.
func (b *Bridge) NotifyRoundTransition(ctx context.Context, tr engine.RoundTransition) error {
	b.scoreboard(tr.To, board.CluesPerRound, tr.Scoreboard)
	b.log(formatTransition(tr, b.names[tr.Picker])...)
	return b.hold(ctx, b.resultDelay)
}

// NotifyFinalCategory implements engine.Presentation.
func (b *Bridge) NotifyFinalCategory(ctx context.Context, fc engine.FinalCategory) error {
	b.scoreboard(board.Final, 0, fc.Scoreboard)
	b.log(formatFinalCategory(fc)...)
	return b.hold(ctx, b.resultDelay)
}

// NotifyFinalReveal implements engine.Presentation.
func (b *Bridge) NotifyFinalReveal(ctx context.Context, rev engine.FinalReveal) error {
	players := make([]engine.Player, len(rev.Entries))
	for i, e := range rev.Entries {
		players[i] = e.Player
	}
	b.scoreboard(board.Final, 0, players)
	b.log(formatFinalReveal(rev)...)
	_, err := b.ask(ctx, &prompt{kind: promptContinue, label: "Press enter for the results"})
	return err
}

// NotifyResults implements engine.Presentation. Ctrl+R at this point plays
// the board again.
func (b *Bridge) NotifyResults(ctx context.Context, res engine.Results) error {
	b.log(FormatResults(res)...)
	_, err := b.ask(ctx, &prompt{kind: promptContinue, label: "Press enter to exit, ctrl+r to play again"})
	return err
}
