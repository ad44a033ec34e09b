package testutil

import "sync"

// DeterministicClock is a version clock for tests: versions are 1, 2, 3...
//
// It satisfies engine.VersionClock, so the same scenario always stamps the
// same versions. Advance lets it follow engine.Restore like the wall clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	last int64
}

// NewDeterministicClock creates a clock whose first stamp is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next returns the next version stamp.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

// Current returns the last stamp issued (0 before the first Next).
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Advance moves the clock so the next stamp is greater than floor.
func (c *DeterministicClock) Advance(floor int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = max(c.last, floor)
}

// Reset rewinds the clock; the next stamp is 1 again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = 0
}
