package engine

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic logical counter. The engine stamps every stored
// document with Clock.Next() at creation so collections materialize in a
// deterministic insertion order regardless of map iteration.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used by Restore to continue after the highest restored seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// VersionClock produces document version stamps.
//
// Implemented by WallClock (production) and testutil.DeterministicClock
// (tests). Every call must return a value strictly greater than the last.
type VersionClock interface {
	Next() int64
}

// advancer is implemented by version clocks that can be moved past
// versions restored from a snapshot.
type advancer interface {
	Advance(floor int64)
}

// WallClock stamps versions with the current Unix time in milliseconds.
// Two writes within the same millisecond still get distinct, increasing
// stamps: a stamp is never lower than the previous stamp plus one.
//
// Thread-safety: WallClock is safe for concurrent use (CAS loop).
type WallClock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewWallClock creates a wall clock backed by time.Now.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

// Next returns max(now in ms, last+1).
func (c *WallClock) Next() int64 {
	for {
		last := c.last.Load()
		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Advance ensures later stamps are greater than floor.
func (c *WallClock) Advance(floor int64) {
	for {
		last := c.last.Load()
		if floor <= last || c.last.CompareAndSwap(last, floor) {
			return
		}
	}
}
