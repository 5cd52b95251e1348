// Package clock drives the target instant: a periodic "now" tick that follows
// real time while the target sits on today, plus explicit day and month
// navigation.
package clock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/ritmxoid/internal/rhythm"
)

// ErrBadStep is returned for a zero navigation step.
var ErrBadStep = errors.New("step must be non-zero")

// Clock holds the navigable target instant. Safe for concurrent use.
type Clock struct {
	Interval time.Duration // Tick interval (default 1 second)

	// Callbacks, populated during setup.
	OnTick func(target time.Time) // Every tick
	OnDay  func(target time.Time) // When the target crosses into a new day

	// Now is the time source; tests replace it.
	Now func() time.Time

	mu      sync.RWMutex
	target  time.Time
	running bool
}

// New creates a clock whose target starts at now.
func New() *Clock {
	c := &Clock{
		Interval: time.Second,
		Now:      time.Now,
	}
	c.target = rhythm.Target(c.Now())
	return c
}

// Target returns the current target instant in the application zone.
func (c *Clock) Target() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

// Running reports whether Run is active.
func (c *Clock) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Tick follows real time: the target moves to now only while it is on the
// same calendar day as now. A navigated target stays where it was put.
// Returns the target after the tick.
func (c *Clock) Tick(now time.Time) time.Time {
	now = rhythm.Target(now)

	c.mu.Lock()
	prev := c.target
	if sameDay(prev, now) {
		c.target = now
	}
	target := c.target
	c.mu.Unlock()

	if c.OnTick != nil {
		c.OnTick(target)
	}
	if !sameDay(prev, target) && c.OnDay != nil {
		c.OnDay(target)
	}
	return target
}

// StepDays moves the target by n calendar days.
func (c *Clock) StepDays(n int) (time.Time, error) {
	if n == 0 {
		return time.Time{}, ErrBadStep
	}
	return c.set(func(t time.Time) time.Time { return t.AddDate(0, 0, n) }), nil
}

// StepMonths moves the target by n months. Day-of-month overflow clamps to
// the last day of the resulting month.
func (c *Clock) StepMonths(n int) (time.Time, error) {
	if n == 0 {
		return time.Time{}, ErrBadStep
	}
	return c.set(func(t time.Time) time.Time { return addMonths(t, n) }), nil
}

// Reset moves the target back to now.
func (c *Clock) Reset(now time.Time) time.Time {
	return c.set(func(time.Time) time.Time { return rhythm.Target(now) })
}

// Set moves the target to an explicit instant.
func (c *Clock) Set(t time.Time) time.Time {
	return c.set(func(time.Time) time.Time { return rhythm.Target(t) })
}

func (c *Clock) set(move func(time.Time) time.Time) time.Time {
	c.mu.Lock()
	prev := c.target
	c.target = move(prev)
	target := c.target
	c.mu.Unlock()

	if !sameDay(prev, target) && c.OnDay != nil {
		c.OnDay(target)
	}
	return target
}

// Run ticks every Interval until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
	slog.Info("clock started", "target", c.Target(), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Tick(c.Now())
		case <-ctx.Done():
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			slog.Info("clock stopped", "target", c.Target())
			return
		}
	}
}

func sameDay(a, b time.Time) bool {
	return rhythm.StartOfDay(a).Equal(rhythm.StartOfDay(b))
}

func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
