// Package ratelimit provides a per-key cooldown limiter for command
// and settings operations.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates operations by key with a fixed cooldown per check.
type Limiter interface {
	// Check admits the key if its cooldown has elapsed and records
	// the attempt. On denial it returns the remaining wait and false.
	Check(key string, cooldown time.Duration) (time.Duration, bool)
	// Reset clears the cooldown for a key.
	Reset(key string)
	// Sweep drops entries older than the given age and returns how
	// many were removed.
	Sweep(olderThan time.Duration) int
}

// CooldownLimiter is an in-memory Limiter. Entries do not survive a
// restart, which is acceptable for the short windows it guards.
type CooldownLimiter struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func New() *CooldownLimiter {
	return &CooldownLimiter{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Key builds the canonical limiter key for a guild-scoped user action.
func Key(guildID, userID, action string) string {
	return guildID + ":" + userID + ":" + action
}

func (l *CooldownLimiter) Check(key string, cooldown time.Duration) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if prev, ok := l.last[key]; ok {
		elapsed := now.Sub(prev)
		if elapsed < cooldown {
			return cooldown - elapsed, false
		}
	}
	l.last[key] = now
	return 0, true
}

func (l *CooldownLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, key)
}

func (l *CooldownLimiter) Sweep(olderThan time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-olderThan)
	removed := 0
	for key, at := range l.last {
		if at.Before(cutoff) {
			delete(l.last, key)
			removed++
		}
	}
	return removed
}
