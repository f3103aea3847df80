package testutil

import (
	"sync"
	"time"
)

// DeterministicClock provides a thread-safe stepping wall clock for tests.
//
// Each call to Now returns start + n*step and then advances n, so the same
// scenario always stamps relations and task closes with identical times.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// DefaultEpoch is the start time used by NewDefaultClock.
var DefaultEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDeterministicClock creates a clock whose first Now() returns start.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start.UTC(), step: step}
}

// NewDefaultClock starts at DefaultEpoch and steps one second per call.
func NewDefaultClock() *DeterministicClock {
	return NewDeterministicClock(DefaultEpoch, time.Second)
}

// Now returns the current time and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.at()
	c.n++
	return t
}

// Current returns the time the next Now() will return, without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at()
}

// Set moves the clock so the next Now() returns t.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = t.UTC()
	c.n = 0
}

// Reset rewinds the clock to its start time.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

func (c *DeterministicClock) at() time.Time {
	return c.start.Add(time.Duration(c.n) * c.step)
}
