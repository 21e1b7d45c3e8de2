package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func newTestLimiter() (*CooldownLimiter, *fakeClock) {
	clock := &fakeClock{cur: time.Unix(1700000000, 0)}
	l := New()
	l.now = clock.now
	return l, clock
}

func TestCheckAdmitsThenDenies(t *testing.T) {
	l, clock := newTestLimiter()

	_, ok := l.Check("g:u:color", time.Minute)
	require.True(t, ok)

	remaining, ok := l.Check("g:u:color", time.Minute)
	assert.False(t, ok)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, time.Minute)

	clock.advance(time.Minute)
	_, ok = l.Check("g:u:color", time.Minute)
	assert.True(t, ok)
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	_, ok := l.Check(Key("g1", "u1", "color"), time.Minute)
	require.True(t, ok)

	_, ok = l.Check(Key("g1", "u2", "color"), time.Minute)
	assert.True(t, ok)
	_, ok = l.Check(Key("g2", "u1", "color"), time.Minute)
	assert.True(t, ok)
	_, ok = l.Check(Key("g1", "u1", "icon"), time.Minute)
	assert.True(t, ok)
}

func TestConcurrentCheckAdmitsExactlyOne(t *testing.T) {
	l, _ := newTestLimiter()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := l.Check("g:u:settings", time.Minute); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
}

func TestRemainingNeverExceedsCooldown(t *testing.T) {
	l, clock := newTestLimiter()

	_, ok := l.Check("k", 10*time.Second)
	require.True(t, ok)

	for i := 0; i < 9; i++ {
		clock.advance(time.Second)
		remaining, ok := l.Check("k", 10*time.Second)
		require.False(t, ok)
		assert.LessOrEqual(t, remaining, 10*time.Second)
		assert.Greater(t, remaining, time.Duration(0))
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter()

	_, ok := l.Check("k", time.Hour)
	require.True(t, ok)

	l.Reset("k")
	_, ok = l.Check("k", time.Hour)
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter()

	l.Check("old", time.Minute)
	clock.advance(2 * time.Hour)
	l.Check("fresh", time.Minute)

	removed := l.Sweep(time.Hour)
	assert.Equal(t, 1, removed)

	// Swept key behaves like a new one.
	_, ok := l.Check("old", time.Hour)
	assert.True(t, ok)

	// Fresh key is still on cooldown.
	_, ok = l.Check("fresh", time.Hour)
	assert.False(t, ok)
}
