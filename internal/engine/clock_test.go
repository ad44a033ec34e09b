package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_NextIncrements(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())

	resumed := NewClockAt(41)
	assert.Equal(t, int64(42), resumed.Next())
}

func TestWallClock_StrictlyIncreasingWithinMillisecond(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	c := &WallClock{now: func() time.Time { return frozen }}

	assert.Equal(t, int64(1_700_000_000_000), c.Next())
	assert.Equal(t, int64(1_700_000_000_001), c.Next())
	assert.Equal(t, int64(1_700_000_000_002), c.Next())
}

func TestWallClock_NeverGoesBackwards(t *testing.T) {
	now := time.UnixMilli(2_000)
	c := &WallClock{now: func() time.Time { return now }}

	assert.Equal(t, int64(2_000), c.Next())
	now = time.UnixMilli(1_000)
	assert.Equal(t, int64(2_001), c.Next())
}

func TestWallClock_Advance(t *testing.T) {
	c := &WallClock{now: func() time.Time { return time.UnixMilli(10) }}

	c.Advance(500)
	assert.Equal(t, int64(501), c.Next())

	c.Advance(100)
	assert.Equal(t, int64(502), c.Next())
}

func TestWallClock_Concurrent(t *testing.T) {
	c := NewWallClock()

	const n = 500
	stamps := make(chan int64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stamps <- c.Next()
		}()
	}
	wg.Wait()
	close(stamps)

	seen := make(map[int64]bool)
	for s := range stamps {
		require.False(t, seen[s], "duplicate stamp %d", s)
		seen[s] = true
	}
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("u1", "u2")
	assert.Equal(t, "u1", g.Generate())
	assert.Equal(t, "u2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
