package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
	ns  int64
	log []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	c.t = c.t.Add(d)
	c.log = append(c.log, d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(perSec, perHour int) (*DualWindow, *fakeClock) {
	clock := newFakeClock()
	l := NewDualWindow(perSec, perHour)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("grants immediately under both quotas", func(t *testing.T) {
		l, clock := newTestLimiter(3, 100)
		for i := 0; i < 3; i++ {
			if err := l.Acquire(ctx); err != nil {
				t.Fatalf("Acquire %d: %v", i, err)
			}
		}
		if len(clock.log) != 0 {
			t.Errorf("slept %v, want no sleeps under quota", clock.log)
		}
	})

	t.Run("blocks when the second window is full", func(t *testing.T) {
		l, clock := newTestLimiter(2, 100)
		for i := 0; i < 2; i++ {
			if err := l.Acquire(ctx); err != nil {
				t.Fatal(err)
			}
		}

		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
		if len(clock.log) == 0 {
			t.Fatal("third acquire should have slept")
		}
		// The wait equals the full second window: all grants landed on the
		// same fake instant.
		if clock.log[0] != time.Second {
			t.Errorf("first sleep = %v, want 1s", clock.log[0])
		}
	})

	t.Run("second window frees up as time passes", func(t *testing.T) {
		l, clock := newTestLimiter(1, 100)
		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
		clock.advance(1100 * time.Millisecond)
		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
		if len(clock.log) != 0 {
			t.Errorf("slept %v after window expired, want none", clock.log)
		}
	})

	t.Run("hour window blocks independently", func(t *testing.T) {
		l, clock := newTestLimiter(10, 2)
		for i := 0; i < 2; i++ {
			if err := l.Acquire(ctx); err != nil {
				t.Fatal(err)
			}
		}

		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
		if len(clock.log) == 0 || clock.log[0] != time.Hour {
			t.Errorf("sleeps = %v, want initial 1h wait", clock.log)
		}
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		l, _ := newTestLimiter(1, 100)
		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if err := l.Acquire(cancelled); err == nil {
			t.Error("Acquire with cancelled context should fail")
		}
	})

	t.Run("never exceeds the per-second cap under concurrency", func(t *testing.T) {
		const perSec = 5
		l := NewDualWindow(perSec, 1000)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := l.Acquire(context.Background()); err != nil {
					t.Errorf("Acquire: %v", err)
				}
			}()
		}
		wg.Wait()

		// Every granted timestamp pair must respect the window invariant:
		// no sliding 1s span holds more than perSec grants.
		l.mu.Lock()
		grants := append([]time.Time(nil), l.hourWindow...)
		l.mu.Unlock()
		for i := range grants {
			count := 0
			for j := range grants {
				diff := grants[j].Sub(grants[i])
				if diff >= 0 && diff < time.Second {
					count++
				}
			}
			if count > perSec {
				t.Fatalf("window starting at grant %d holds %d > %d grants", i, count, perSec)
			}
		}
	})
}

func TestNewDualWindowDefaults(t *testing.T) {
	l := NewDualWindow(0, -5)
	if l.perSec != 1 || l.perHour != 1 {
		t.Errorf("quotas = %d/%d, want 1/1 for non-positive input", l.perSec, l.perHour)
	}
}
