// Package pause provides one-shot timers that can all be frozen and resumed
// together. A Scheduler owns every live timer; pausing it stops the countdown
// of each one and resuming continues from exactly the remaining duration, so
// paused time is never charged against a timer.
package pause

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

type timerState int

const (
	statePending timerState = iota
	stateDue
	stateFired
	stateCancelled
)

// Timer is a handle to a callback registered with Scheduler.After.
type Timer struct {
	s         *Scheduler
	seq       uint64
	fn        func()
	remaining time.Duration
	started   time.Time
	state     timerState
}

// Scheduler multiplexes pausable timers over a single underlying clock timer
// armed for the earliest live deadline.
type Scheduler struct {
	clock  quartz.Clock
	logger *log.Logger

	mu        sync.Mutex
	paused    bool
	seq       uint64
	timers    map[uint64]*Timer
	due       map[uint64]*Timer
	driver    *quartz.Timer
	driverGen uint64

	listenerSeq uint64
	listeners   map[uint64]func(paused bool)
}

// New creates a Scheduler driven by clock.
func New(clock quartz.Clock, logger *log.Logger) *Scheduler {
	return &Scheduler{
		clock:     clock,
		logger:    logger.WithPrefix("scheduler"),
		timers:    make(map[uint64]*Timer),
		due:       make(map[uint64]*Timer),
		listeners: make(map[uint64]func(bool)),
	}
}

// After registers fn to run once d of unpaused time has elapsed. Timers
// registered while the scheduler is paused start counting on resume.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	now := s.clock.Now()
	t := &Timer{
		s:         s,
		seq:       s.seq,
		fn:        fn,
		remaining: d,
		started:   now,
	}
	s.timers[t.seq] = t
	s.armLocked(now)

	s.logger.Debug("Timer registered", "timer", t.seq, "duration", d, "paused", s.paused)
	return t
}

// Cancel stops the timer. It is safe to call at any time, any number of
// times, including after the timer fired. It reports whether this call
// prevented the callback from running.
func (t *Timer) Cancel() bool {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t.state {
	case statePending:
		t.state = stateCancelled
		delete(s.timers, t.seq)
		s.armLocked(s.clock.Now())
		return true
	case stateDue:
		t.state = stateCancelled
		delete(s.due, t.seq)
		return true
	default:
		return false
	}
}

// Remaining returns how much unpaused time is left before the timer fires.
// Fired and cancelled timers report zero.
func (t *Timer) Remaining() time.Duration {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.state != statePending {
		return 0
	}
	return t.remainingLocked(s.clock.Now(), s.paused)
}

func (t *Timer) remainingLocked(now time.Time, paused bool) time.Duration {
	if paused {
		return t.remaining
	}
	left := t.remaining - now.Sub(t.started)
	if left < 0 {
		return 0
	}
	return left
}

func (t *Timer) deadline() time.Time {
	return t.started.Add(t.remaining)
}

// SetPaused freezes or resumes every live timer. Repeated calls with the same
// value are no-ops.
func (s *Scheduler) SetPaused(paused bool) {
	s.mu.Lock()
	if s.paused == paused {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	if paused {
		for _, t := range s.timers {
			t.remaining = t.remainingLocked(now, false)
		}
	} else {
		for _, t := range s.timers {
			t.started = now
		}
	}
	s.paused = paused
	s.armLocked(now)
	listeners := s.listenersLocked()
	live := len(s.timers)
	s.mu.Unlock()

	s.logger.Debug("Pause state changed", "paused", paused, "timers", live)
	for _, fn := range listeners {
		fn(paused)
	}
}

// Paused reports the global pause flag.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Toggle flips the pause flag and returns the new value.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	next := !s.paused
	s.mu.Unlock()
	s.SetPaused(next)
	return next
}

// CancelAll cancels every outstanding timer and returns how many were live.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for seq, t := range s.timers {
		t.state = stateCancelled
		delete(s.timers, seq)
		n++
	}
	for seq, t := range s.due {
		t.state = stateCancelled
		delete(s.due, seq)
		n++
	}
	s.armLocked(s.clock.Now())

	if n > 0 {
		s.logger.Debug("Cancelled all timers", "count", n)
	}
	return n
}

// Now returns the current time of the underlying clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Pending returns the number of timers still counting down or frozen.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Sleep blocks for d of unpaused time or until ctx is done.
func (s *Scheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	done := make(chan struct{})
	t := s.After(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Cancel()
		return ctx.Err()
	}
}

// OnPauseChange subscribes fn to pause transitions. The returned function
// removes the subscription.
func (s *Scheduler) OnPauseChange(fn func(paused bool)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listenerSeq++
	id := s.listenerSeq
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Scheduler) listenersLocked() []func(bool) {
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	return fns
}

// armLocked replaces the driver timer with one that expires at the earliest
// live deadline. No driver runs while paused.
func (s *Scheduler) armLocked(now time.Time) {
	if s.driver != nil {
		s.driver.Stop()
		s.driver = nil
	}
	s.driverGen++

	if s.paused || len(s.timers) == 0 {
		return
	}

	var next time.Time
	for _, t := range s.timers {
		if d := t.deadline(); next.IsZero() || d.Before(next) {
			next = d
		}
	}

	wait := next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	gen := s.driverGen
	s.driver = s.clock.AfterFunc(wait, func() { s.tick(gen) })
}

// tick fires every timer whose deadline has passed, earliest deadline first
// and registration order for ties. A callback that cancels a timer due in the
// same tick prevents it from running, and one that pauses the scheduler holds
// the rest of the batch until resume.
func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.driverGen || s.paused {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	var due []*Timer
	for seq, t := range s.timers {
		if !t.deadline().After(now) {
			t.state = stateDue
			delete(s.timers, seq)
			s.due[seq] = t
			due = append(due, t)
		}
	}
	slices.SortFunc(due, func(a, b *Timer) int {
		if c := a.deadline().Compare(b.deadline()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	s.driver = nil
	s.armLocked(now)
	s.mu.Unlock()

	for i, t := range due {
		s.mu.Lock()
		if s.paused {
			s.requeueLocked(due[i:])
			s.mu.Unlock()
			return
		}
		if t.state != stateDue {
			s.mu.Unlock()
			continue
		}
		t.state = stateFired
		delete(s.due, t.seq)
		s.mu.Unlock()

		s.logger.Debug("Timer fired", "timer", t.seq)
		t.fn()
	}
}

// requeueLocked returns timers that came due but had not run when a pause
// landed. They are frozen with nothing left and fire first after resume.
func (s *Scheduler) requeueLocked(rest []*Timer) {
	now := s.clock.Now()
	n := 0
	for _, t := range rest {
		if t.state != stateDue {
			continue
		}
		delete(s.due, t.seq)
		t.state = statePending
		t.remaining = 0
		t.started = now
		s.timers[t.seq] = t
		n++
	}
	s.armLocked(now)
	if n > 0 {
		s.logger.Debug("Due timers held by pause", "count", n)
	}
}
