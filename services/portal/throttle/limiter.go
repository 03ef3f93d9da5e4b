// Package throttle counts failed logins per email and locks the address out
// after too many.
package throttle

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	MaxLoginAttempts = 5
	LockoutDuration  = 15 * time.Minute
)

// Limiter tracks failed login attempts.
type Limiter interface {
	// Check reports whether another attempt is allowed. When it is not,
	// retryAfter is the remaining lockout.
	Check(ctx context.Context, email string) (allowed bool, retryAfter time.Duration, err error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

func key(email string) string {
	return "login:attempts:" + strings.ToLower(strings.TrimSpace(email))
}

type entry struct {
	count   int
	expires time.Time
}

// MemoryLimiter keeps counters in process.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]entry
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]entry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) live(k string) (entry, bool) {
	e, ok := l.entries[k]
	if !ok {
		return entry{}, false
	}
	if !l.now().Before(e.expires) {
		delete(l.entries, k)
		return entry{}, false
	}
	return e, true
}

func (l *MemoryLimiter) Check(_ context.Context, email string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.live(key(email))
	if !ok || e.count < l.max {
		return true, 0, nil
	}
	return false, e.expires.Sub(l.now()), nil
}

func (l *MemoryLimiter) Fail(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(email)
	e, _ := l.live(k)
	e.count++
	e.expires = l.now().Add(l.window)
	l.entries[k] = e
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key(email))
	return nil
}
