package pause

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// recorder collects callback names in firing order.
type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) fn(name string) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.fired = append(r.fired, name)
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func setup(t *testing.T) (*quartz.Mock, *Scheduler, context.Context) {
	t.Helper()
	clock := quartz.NewMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return clock, New(clock, testLogger()), ctx
}

func TestTimerFiresOnceAfterDuration(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	s.After(time.Second, rec.fn("a"))
	assert.Equal(t, 1, s.Pending())

	clock.Advance(999 * time.Millisecond).MustWait(ctx)
	assert.Empty(t, rec.list())

	clock.Advance(time.Millisecond).MustWait(ctx)
	assert.Equal(t, []string{"a"}, rec.list())
	assert.Equal(t, 0, s.Pending())

	clock.Advance(time.Hour).MustWait(ctx)
	assert.Equal(t, []string{"a"}, rec.list(), "timer must not fire twice")
}

func TestPauseFreezesRemainingDuration(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	timer := s.After(1000*time.Millisecond, rec.fn("a"))
	clock.Advance(400 * time.Millisecond).MustWait(ctx)

	s.SetPaused(true)
	assert.True(t, s.Paused())
	assert.Equal(t, 600*time.Millisecond, timer.Remaining())

	// An arbitrary real-world gap while paused is never charged.
	clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Empty(t, rec.list())
	assert.Equal(t, 600*time.Millisecond, timer.Remaining())

	s.SetPaused(false)
	clock.Advance(599 * time.Millisecond).MustWait(ctx)
	assert.Empty(t, rec.list(), "fired early")
	assert.Equal(t, time.Millisecond, timer.Remaining())

	clock.Advance(time.Millisecond).MustWait(ctx)
	assert.Equal(t, []string{"a"}, rec.list())
}

func TestRepeatedPauseCyclesDeductExactly(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	s.After(1000*time.Millisecond, rec.fn("a"))

	clock.Advance(100 * time.Millisecond).MustWait(ctx)
	s.SetPaused(true)
	clock.Advance(50 * time.Millisecond).MustWait(ctx)
	s.SetPaused(false)

	clock.Advance(200 * time.Millisecond).MustWait(ctx)
	s.SetPaused(true)
	s.SetPaused(true) // no-op
	clock.Advance(5 * time.Second).MustWait(ctx)
	s.SetPaused(false)

	clock.Advance(699 * time.Millisecond).MustWait(ctx)
	assert.Empty(t, rec.list())

	clock.Advance(time.Millisecond).MustWait(ctx)
	assert.Equal(t, []string{"a"}, rec.list())
}

func TestTimerRegisteredWhilePausedWaitsForResume(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	s.SetPaused(true)
	timer := s.After(500*time.Millisecond, rec.fn("a"))
	clock.Advance(time.Second).MustWait(ctx)
	assert.Empty(t, rec.list())
	assert.Equal(t, 500*time.Millisecond, timer.Remaining())

	s.SetPaused(false)
	clock.Advance(500 * time.Millisecond).MustWait(ctx)
	assert.Equal(t, []string{"a"}, rec.list())
}

func TestCancelIsIdempotent(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	a := s.After(time.Second, rec.fn("a"))
	b := s.After(2*time.Second, rec.fn("b"))

	assert.True(t, a.Cancel())
	assert.False(t, a.Cancel())
	assert.Equal(t, time.Duration(0), a.Remaining())
	assert.Equal(t, 1, s.Pending())

	clock.Advance(2 * time.Second).MustWait(ctx)
	assert.Equal(t, []string{"b"}, rec.list())
	assert.False(t, b.Cancel(), "cancel after firing is a no-op")
}

func TestFiringOrder(t *testing.T) {
	t.Run("earliest deadline first", func(t *testing.T) {
		clock, s, ctx := setup(t)
		rec := &recorder{}

		s.After(300*time.Millisecond, rec.fn("slow"))
		s.After(100*time.Millisecond, rec.fn("fast"))

		clock.Advance(100 * time.Millisecond).MustWait(ctx)
		clock.Advance(200 * time.Millisecond).MustWait(ctx)
		assert.Equal(t, []string{"fast", "slow"}, rec.list())
	})

	t.Run("ties break by registration order", func(t *testing.T) {
		clock, s, ctx := setup(t)
		rec := &recorder{}

		s.After(time.Second, rec.fn("first"))
		s.After(time.Second, rec.fn("second"))
		s.After(time.Second, rec.fn("third"))

		clock.Advance(time.Second).MustWait(ctx)
		assert.Equal(t, []string{"first", "second", "third"}, rec.list())
	})

	t.Run("callback cancels a sibling due in the same tick", func(t *testing.T) {
		clock, s, ctx := setup(t)
		rec := &recorder{}

		var second *Timer
		s.After(time.Second, func() {
			rec.fn("first")()
			second.Cancel()
		})
		second = s.After(time.Second, rec.fn("second"))

		clock.Advance(time.Second).MustWait(ctx)
		assert.Equal(t, []string{"first"}, rec.list())
	})
}

func TestPauseInsideCallbackHoldsSiblingsDueInSameTick(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	s.After(time.Second, func() {
		rec.fn("first")()
		s.SetPaused(true)
	})
	second := s.After(time.Second, rec.fn("second"))

	clock.Advance(time.Second).MustWait(ctx)
	assert.Equal(t, []string{"first"}, rec.list())
	assert.True(t, s.Paused())
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, time.Duration(0), second.Remaining())

	clock.Advance(time.Hour).MustWait(ctx)
	assert.Equal(t, []string{"first"}, rec.list())

	s.SetPaused(false)
	require.Eventually(t, func() bool { return len(rec.list()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, rec.list())
	assert.Equal(t, 0, s.Pending())
	assert.False(t, second.Cancel())
}

func TestCancelAll(t *testing.T) {
	clock, s, ctx := setup(t)
	rec := &recorder{}

	s.After(time.Second, rec.fn("a"))
	s.After(2*time.Second, rec.fn("b"))
	s.SetPaused(true)
	s.After(3*time.Second, rec.fn("c"))

	assert.Equal(t, 3, s.CancelAll())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.CancelAll())

	s.SetPaused(false)
	clock.Advance(time.Hour).MustWait(ctx)
	assert.Empty(t, rec.list())
}

func TestSleep(t *testing.T) {
	t.Run("returns after the delay", func(t *testing.T) {
		clock, s, ctx := setup(t)

		done := make(chan error, 1)
		go func() { done <- s.Sleep(ctx, 1200*time.Millisecond) }()

		require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
		clock.Advance(1200 * time.Millisecond).MustWait(ctx)
		require.NoError(t, <-done)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		_, s, ctx := setup(t)
		sleepCtx, cancel := context.WithCancel(ctx)

		done := make(chan error, 1)
		go func() { done <- s.Sleep(sleepCtx, time.Minute) }()

		require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
		assert.Equal(t, 0, s.Pending())
	})

	t.Run("non-positive delay returns immediately", func(t *testing.T) {
		_, s, ctx := setup(t)
		require.NoError(t, s.Sleep(ctx, 0))
		assert.Equal(t, 0, s.Pending())
	})
}

func TestOnPauseChange(t *testing.T) {
	_, s, _ := setup(t)

	var got []bool
	unsubscribe := s.OnPauseChange(func(paused bool) { got = append(got, paused) })

	assert.True(t, s.Toggle())
	assert.False(t, s.Toggle())
	s.SetPaused(false) // unchanged, no notification

	unsubscribe()
	s.SetPaused(true)

	assert.Equal(t, []bool{true, false}, got)
}
