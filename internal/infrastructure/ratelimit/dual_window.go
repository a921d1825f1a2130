// Package ratelimit provides the process-wide gate shared by every worker
// that talks to the search backend.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	secondWindow = time.Second
	hourWindow   = time.Hour

	// minSleep avoids busy-spinning when a slot is about to free up.
	minSleep = time.Millisecond
)

// DualWindow enforces two independent sliding-window quotas at once: a
// per-second cap and a per-hour cap. A grant reserves a token in both
// windows. Safe for any number of concurrent callers; the prune/check/append
// sequence is fully serialized under one mutex.
type DualWindow struct {
	perSec  int
	perHour int

	mu         sync.Mutex
	secWindow  []time.Time
	hourWindow []time.Time

	// now is swapped out in tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewDualWindow creates a limiter with the given quotas. Non-positive
// quotas fall back to 1.
func NewDualWindow(perSec, perHour int) *DualWindow {
	if perSec <= 0 {
		perSec = 1
	}
	if perHour <= 0 {
		perHour = 1
	}
	return &DualWindow{
		perSec:  perSec,
		perHour: perHour,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Acquire blocks until both windows have room, reserves one token in each,
// and returns. The only failure mode is context cancellation; the limiter
// itself never rejects. Waiters recompute their sleep against current state
// on every cycle instead of queuing, so concurrent workers converge toward
// round-robin access as the windows drain.
func (l *DualWindow) Acquire(ctx context.Context) error {
	for {
		granted, wait := l.tryAcquire()
		if granted {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAcquire prunes expired timestamps, grants if both windows have room,
// and otherwise returns the minimum wait until the earliest entry expires.
func (l *DualWindow) tryAcquire() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.secWindow = prune(l.secWindow, now.Add(-secondWindow))
	l.hourWindow = prune(l.hourWindow, now.Add(-hourWindow))

	if len(l.secWindow) < l.perSec && len(l.hourWindow) < l.perHour {
		l.secWindow = append(l.secWindow, now)
		l.hourWindow = append(l.hourWindow, now)
		return true, 0
	}

	// Only exhausted windows contribute to the wait; a window with room
	// imposes no delay.
	wait := time.Duration(1<<62 - 1)
	if len(l.secWindow) >= l.perSec {
		if d := l.secWindow[0].Add(secondWindow).Sub(now); d < wait {
			wait = d
		}
	}
	if len(l.hourWindow) >= l.perHour {
		if d := l.hourWindow[0].Add(hourWindow).Sub(now); d < wait {
			wait = d
		}
	}
	if wait < minSleep {
		wait = minSleep
	}
	return false, wait
}

// prune drops timestamps at or before the cutoff. Entries are appended in
// non-decreasing order, so the expired prefix is contiguous.
func prune(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
