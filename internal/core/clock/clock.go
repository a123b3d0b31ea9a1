// Package clock provides delta-time clocks over an injectable time source.
package clock

import (
	"sync"
	"time"
)

// TimeSource supplies the current time. System is used in production,
// Mock in tests.
type TimeSource interface {
	Now() time.Time
}

// System reads the monotonic wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Clock measures the time elapsed between successive Delta calls.
type Clock struct {
	mu      sync.Mutex
	source  TimeSource
	start   time.Time
	last    time.Time
	running bool
	elapsed time.Duration
}

// New creates a stopped clock. A nil source uses System.
func New(source TimeSource) *Clock {
	if source == nil {
		source = System{}
	}
	return &Clock{source: source}
}

// Start (re)starts the clock so the next Delta is measured from now.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.source.Now()
	c.start = now
	c.last = now
	c.elapsed = 0
	c.running = true
}

// Stop freezes the clock. The next Delta restarts it and reports zero.
func (c *Clock) Stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Delta returns the time since the previous Delta call (or since Start).
// A stopped clock auto-starts on first use and reports zero.
func (c *Clock) Delta() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.source.Now()
	if !c.running {
		c.start = now
		c.last = now
		c.running = true
		return 0
	}
	d := now.Sub(c.last)
	if d < 0 {
		d = 0
	}
	c.last = now
	c.elapsed += d
	return d
}

// Elapsed is the sum of all deltas handed out since Start.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}
