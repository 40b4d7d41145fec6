package access

import (
	"log"
	"sync"
	"time"
)

// DefaultLockoutDelay is how long the denial screen stays up before the
// forced logout fires on its own.
const DefaultLockoutDelay = 5 * time.Second

// SessionEnder is the one entry point the gate uses to end a session. Forced
// logout is the only place access checks touch the session manager outside a
// user-initiated action.
type SessionEnder interface {
	Stop(token string) error
}

// Lockout schedules the forced logout that follows an admin-area denial.
// Each denied session gets exactly one pending logout; the explicit
// "return to login" action triggers the same teardown immediately.
type Lockout struct {
	sessions SessionEnder
	delay    time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    map[string]bool
}

// NewLockout creates a lockout scheduler. A zero delay falls back to the
// default 5 seconds.
func NewLockout(sessions SessionEnder, delay time.Duration) *Lockout {
	if delay <= 0 {
		delay = DefaultLockoutDelay
	}
	return &Lockout{
		sessions: sessions,
		delay:    delay,
		pending:  make(map[string]*time.Timer),
		done:     make(map[string]bool),
	}
}

// Schedule arms the delayed forced logout for a denied session. Repeated
// denials for the same token never stack a second logout.
func (l *Lockout) Schedule(token, userID, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done[token] || l.pending[token] != nil {
		return
	}

	// Security event: resident-class viewer reached an admin route.
	log.Printf("[access] denied admin route %s for user %s; forced logout in %s", path, userID, l.delay)

	l.pending[token] = time.AfterFunc(l.delay, func() {
		l.fire(token)
	})
}

// Trigger performs the forced logout immediately, as the explicit
// "return to login" control does. Safe to call whether or not a delayed
// logout is still pending.
func (l *Lockout) Trigger(token string) {
	l.mu.Lock()
	if t, ok := l.pending[token]; ok {
		t.Stop()
	}
	l.mu.Unlock()

	l.fire(token)
}

// Pending reports whether a forced logout is armed for the token.
func (l *Lockout) Pending(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending[token] != nil
}

// fire ends the session exactly once per token.
func (l *Lockout) fire(token string) {
	l.mu.Lock()
	if l.done[token] {
		l.mu.Unlock()
		return
	}
	l.done[token] = true
	delete(l.pending, token)
	l.mu.Unlock()

	if err := l.sessions.Stop(token); err != nil {
		log.Printf("[access] forced logout for token failed: %v", err)
	}
}
