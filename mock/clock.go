package mock

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/roster"
)

var _ roster.Clock = (*Clock)(nil)

// Clock is a virtual roster.Clock. Sleep advances the clock instantly and
// then calls OnSleep, which lets tests act at a given point in time.
type Clock struct {
	OnSleep func(now time.Time, d time.Duration)

	mu    sync.Mutex
	now   time.Time
	slept time.Duration
	calls int
}

// NewClock returns a Clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.slept += d
	c.calls++
	now, hook := c.now, c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(now, d)
	}
	return ctx.Err()
}

// Advance moves the clock forward without counting as a sleep.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Slept returns the total virtual time spent sleeping.
func (c *Clock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Sleeps returns the number of Sleep calls.
func (c *Clock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
