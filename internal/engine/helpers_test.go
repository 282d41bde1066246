package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/board/boardtest"
	"github.com/StevePic95/skylardle/internal/opponent"
	"github.com/StevePic95/skylardle/internal/pause"
	"github.com/StevePic95/skylardle/internal/randutil"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

// errStop ends a game early from inside a presentation callback.
var errStop = errors.New("test: stop")

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// scripted replays fixed draws and counts them. Exhausted scripts return
// 0.99 for floats, which no opponent buzzes or answers correctly on, and 0
// for ints.
type scripted struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	draws  int
}

func (s *scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	if len(s.floats) == 0 {
		return 0.99
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return min(v, n-1)
}

// fakeUI plays the human side. By default the human never buzzes, answers
// correctly, picks the first open cell and wagers the maximum.
type fakeUI struct {
	clock *quartz.Mock

	buzz          func(BuzzPrompt) bool
	answerCorrect func(AnswerRequest) bool
	// waitOut makes the human let the answer budget run out after typing.
	waitOut   func(AnswerRequest) bool
	onAnswer  func(ctx context.Context, req AnswerRequest)
	wager     func(WagerRequest) (int, error)
	pick      func(SelectionRequest) (board.Coord, error)
	onResults func(Results) error
	// stopAtTransition ends the game at the first round transition.
	stopAtTransition bool

	mu          sync.Mutex
	current     ClueInPlay
	starts      []GameStart
	selections  []SelectionRequest
	selected    []ClueSelected
	prompts     []BuzzPrompt
	wagers      []WagerRequest
	answers     []AnswerRequest
	answeredAt  []time.Time
	results     []ClueResult
	resultAt    []time.Time
	transitions []RoundTransition
	finalCats   []FinalCategory
	reveals     []FinalReveal
	finished    []Results
}

func (f *fakeUI) NotifyGameStart(_ context.Context, start GameStart) error {
	f.starts = append(f.starts, start)
	return nil
}

func (f *fakeUI) RequestClueSelection(_ context.Context, req SelectionRequest) (board.Coord, error) {
	f.selections = append(f.selections, req)
	if f.pick != nil {
		return f.pick(req)
	}
	return firstOpen(req.Consumed), nil
}

func firstOpen(consumed board.CoordSet) board.Coord {
	for col := range board.Columns {
		for row := range board.Rows {
			if c := (board.Coord{Col: col, Row: row}); !consumed.Has(c) {
				return c
			}
		}
	}
	return board.Coord{Col: -1}
}

func (f *fakeUI) NotifyClueSelected(_ context.Context, sel ClueSelected) error {
	f.selected = append(f.selected, sel)
	f.current = sel.Clue
	return nil
}

func (f *fakeUI) RequestBuzz(ctx context.Context, prompt BuzzPrompt) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if prompt.CanBuzz && f.buzz != nil && f.buzz(prompt) {
		return nil
	}
	f.drive(ctx)
	return ctx.Err()
}

func (f *fakeUI) RequestWager(_ context.Context, req WagerRequest) (int, error) {
	f.wagers = append(f.wagers, req)
	if f.wager != nil {
		return f.wager(req)
	}
	return req.Max, nil
}

func (f *fakeUI) RequestAnswer(ctx context.Context, req AnswerRequest) (string, error) {
	f.answers = append(f.answers, req)

	text := boardtest.WrongAnswer
	if f.answerCorrect == nil || f.answerCorrect(req) {
		if req.Final {
			text = "Seoul"
		} else {
			text = "What is " + f.current.Clue.Accepted[0] + "?"
		}
	}

	if f.onAnswer != nil {
		f.onAnswer(ctx, req)
	}
	if f.waitOut != nil && f.waitOut(req) {
		f.drive(ctx)
		f.answeredAt = append(f.answeredAt, f.clock.Now())
		return text, ctx.Err()
	}
	f.answeredAt = append(f.answeredAt, f.clock.Now())
	return text, nil
}

func (f *fakeUI) NotifyClueResult(_ context.Context, res ClueResult) error {
	f.results = append(f.results, res)
	f.resultAt = append(f.resultAt, f.clock.Now())
	return nil
}

func (f *fakeUI) NotifyRoundTransition(_ context.Context, tr RoundTransition) error {
	f.transitions = append(f.transitions, tr)
	if f.stopAtTransition {
		return errStop
	}
	return nil
}

func (f *fakeUI) NotifyFinalCategory(_ context.Context, fc FinalCategory) error {
	f.finalCats = append(f.finalCats, fc)
	return nil
}

func (f *fakeUI) NotifyFinalReveal(_ context.Context, rev FinalReveal) error {
	f.reveals = append(f.reveals, rev)
	return nil
}

func (f *fakeUI) NotifyResults(_ context.Context, res Results) error {
	f.finished = append(f.finished, res)
	if f.onResults != nil {
		return f.onResults(res)
	}
	return nil
}

// drive advances the mock clock event by event until ctx is done. Only
// cancellations can happen while the engine waits on the presentation, so
// advancing to the next known event never overshoots one.
func (f *fakeUI) drive(ctx context.Context) {
	for ctx.Err() == nil {
		d, ok := f.clock.Peek()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		f.advance(d)
		time.Sleep(5 * time.Millisecond)
	}
}

func (f *fakeUI) advance(d time.Duration) {
	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.clock.Advance(d).MustWait(wctx)
}

func (f *fakeUI) playerDeltas() map[string]int {
	out := map[string]int{}
	for _, r := range f.results {
		if r.PlayerID != "" {
			out[r.PlayerID] += r.Delta
		}
	}
	return out
}

// memStore records every persistence call. A non-nil err fails them all.
type memStore struct {
	err         error
	snapshot    *Snapshot
	saved       []Snapshot
	cleared     int
	completions []Results
	stats       Stats
}

func (m *memStore) SaveSnapshot(snap Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, snap)
	m.snapshot = &snap
	return nil
}

func (m *memStore) LoadSnapshot(boardID int) (*Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *memStore) ClearSnapshot() error {
	if m.err != nil {
		return m.err
	}
	m.cleared++
	m.snapshot = nil
	return nil
}

func (m *memStore) RecordCompletion(res Results) (Stats, error) {
	if m.err != nil {
		return Stats{}, m.err
	}
	m.completions = append(m.completions, res)
	m.stats = m.stats.Record(res)
	return m.stats, nil
}

type harness struct {
	engine *Engine
	ui     *fakeUI
	store  *memStore
	clock  *quartz.Mock
	sched  *pause.Scheduler
	board  *board.Board
	a, b   opponent.Profile
}

// newHarness wires an engine with higgins as opponent A and buzzy as
// opponent B, no pick delay, and the given random source.
func newHarness(t *testing.T, rng randutil.Rand, opts ...boardtest.Option) *harness {
	t.Helper()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	sched := pause.New(clock, quietLogger())
	ui := &fakeUI{clock: clock}
	store := &memStore{}

	roster := opponent.DefaultRoster()
	a, ok := roster.Get("higgins")
	require.True(t, ok)
	b, ok := roster.Get("buzzy")
	require.True(t, ok)

	cfg := DefaultConfig()
	cfg.PickDelay = 0
	e := New(quietLogger(), rng, sched, ui, store, WithConfig(cfg), WithOpponents(a, b))

	return &harness{
		engine: e,
		ui:     ui,
		store:  store,
		clock:  clock,
		sched:  sched,
		board:  boardtest.New(1, opts...),
		a:      a,
		b:      b,
	}
}

func (h *harness) run(t *testing.T, prior *Snapshot) (*Results, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return h.engine.Run(ctx, h.board, prior)
}

// oneLeft is a round-one snapshot with only open left, human picking.
func (h *harness) oneLeft(r board.Round, open board.Coord, scores map[string]int) *Snapshot {
	consumed := map[board.Round]board.CoordSet{
		board.Single: boardtest.AllBut(),
		board.Double: board.NewCoordSet(),
	}
	consumed[r] = boardtest.AllBut(open)
	if scores == nil {
		scores = map[string]int{}
	}
	return &Snapshot{
		BoardID:  h.board.ID,
		Round:    r,
		Scores:   scores,
		Picker:   HumanID,
		Consumed: consumed,
	}
}
