package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"barangayportal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUserIDRequired  = errors.New("user id required")
)

const (
	// DefaultIdleTimeout is how long a session survives without activity.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultActivityThrottle caps how often activity reschedules the idle
	// timer. Bursts of events inside this window collapse into one reschedule.
	DefaultActivityThrottle = 60 * time.Second

	// TokenLength is the number of random bytes used for session tokens.
	TokenLength = 32
)

// EndReason distinguishes a voluntary logout from an idle expiry.
type EndReason string

const (
	ReasonLogout EndReason = "logout"
	ReasonIdle   EndReason = "idle"
)

// EndHook is invoked after a session ends, with the owning user's ID and the
// reason. Hooks are the only way other components observe session teardown.
type EndHook func(userID string, reason EndReason)

// entry tracks one live session together with its single pending idle timer.
type entry struct {
	session  models.Session
	timer    *time.Timer
	deadline time.Time
	// gen increments on every reschedule so a stale timer firing after it was
	// replaced can recognize itself and do nothing.
	gen uint64
}

// Service is the session lifecycle manager. It maintains at most one idle
// timer per session, reschedules it on throttled activity, and funnels every
// session teardown (logout or expiry) through the same clearing path.
//
// The token and user record are owned exclusively by this service; all other
// components read them through Validate and never mutate them.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*entry
	// expired holds the one-shot "expired due to inactivity" notice per user,
	// consumed by the next login attempt.
	expired map[string]bool
	// drafts is the server-side documentRequestForm draft cache, wiped
	// together with the session.
	drafts map[string]json.RawMessage

	idleTimeout time.Duration
	throttle    time.Duration
	now         func() time.Time
	onEnd       []EndHook
}

// NewService creates a session lifecycle manager. Zero or negative durations
// fall back to the defaults.
func NewService(idleTimeout, throttle time.Duration) *Service {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if throttle <= 0 || throttle >= idleTimeout {
		throttle = DefaultActivityThrottle
	}
	return &Service{
		sessions:    make(map[string]*entry),
		expired:     make(map[string]bool),
		drafts:      make(map[string]json.RawMessage),
		idleTimeout: idleTimeout,
		throttle:    throttle,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// OnEnd registers a hook to run whenever a session ends. Must be called
// during wiring, before the service handles traffic.
func (s *Service) OnEnd(hook EndHook) {
	s.onEnd = append(s.onEnd, hook)
}

// Start creates a session for the given user and begins idle tracking.
func (s *Service) Start(userID, role, userAgent, ipAddress string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, ErrUserIDRequired
	}

	token, err := generateToken()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now()
	session := models.Session{
		Token:        token,
		UserID:       userID,
		Role:         role,
		CreatedAt:    now,
		LastActivity: now,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
	}

	s.mu.Lock()
	e := &entry{session: session, deadline: now.Add(s.idleTimeout)}
	s.sessions[token] = e
	s.scheduleLocked(token, e)
	s.mu.Unlock()

	return session, nil
}

// Validate checks a token and returns the associated session. A session past
// its idle deadline is torn down as an involuntary expiry.
func (s *Service) Validate(token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrInvalidToken
	}

	s.mu.Lock()
	e, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return models.Session{}, ErrSessionNotFound
	}
	if !s.now().Before(e.deadline) {
		hooks, userID := s.endLocked(token, e, ReasonIdle)
		s.mu.Unlock()
		runHooks(hooks, userID, ReasonIdle)
		return models.Session{}, ErrSessionExpired
	}
	session := e.session
	s.mu.Unlock()

	return session, nil
}

// Touch records user activity for the session. The idle timer is rescheduled
// at most once per throttle window; each reschedule cancels the previous
// pending expiry before arming the new one. Returns true if the deadline
// moved.
func (s *Service) Touch(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return false
	}

	now := s.now()
	if !now.Before(e.deadline) {
		// Already past the deadline; let the timer path handle teardown.
		return false
	}
	if now.Sub(e.session.LastActivity) < s.throttle && e.timer != nil {
		return false
	}

	e.session.LastActivity = now
	e.deadline = now.Add(s.idleTimeout)
	s.scheduleLocked(token, e)
	return true
}

// Stop ends a session on explicit logout. Clears the token, the user's draft
// cache, and queued notification state (via hooks), without setting the
// inactivity notice.
func (s *Service) Stop(token string) error {
	s.mu.Lock()
	e, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	hooks, userID := s.endLocked(token, e, ReasonLogout)
	s.mu.Unlock()

	runHooks(hooks, userID, ReasonLogout)
	return nil
}

// RevokeAllForUser ends every session belonging to a user. Used when an
// account is deactivated or forcibly logged out.
func (s *Service) RevokeAllForUser(userID string) int {
	s.mu.Lock()
	var ended []string
	for token, e := range s.sessions {
		if e.session.UserID == userID {
			ended = append(ended, token)
		}
	}
	var hooks []EndHook
	for _, token := range ended {
		hooks, _ = s.endLocked(token, s.sessions[token], ReasonLogout)
	}
	s.mu.Unlock()

	if len(ended) > 0 {
		runHooks(hooks, userID, ReasonLogout)
	}
	return len(ended)
}

// ConsumeExpiredNotice reports whether the user's previous session ended due
// to inactivity. The notice is cleared after one read.
func (s *Service) ConsumeExpiredNotice(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired[userID] {
		delete(s.expired, userID)
		return true
	}
	return false
}

// SaveDraft stores the user's in-progress document request form.
func (s *Service) SaveDraft(token string, draft json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	s.drafts[e.session.UserID] = draft
	return nil
}

// Draft returns the user's saved form draft, if any.
func (s *Service) Draft(token string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	draft, ok := s.drafts[e.session.UserID]
	return draft, ok
}

// Deadline returns the current idle deadline for a session token.
func (s *Service) Deadline(token string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return time.Time{}, false
	}
	return e.deadline, true
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// scheduleLocked arms the idle timer for an entry, cancelling any previously
// pending expiry first. Must be called with mu held.
func (s *Service) scheduleLocked(token string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	d := e.deadline.Sub(s.now())
	e.timer = time.AfterFunc(d, func() {
		s.expire(token, gen)
	})
}

// expire handles an idle timer firing. A stale timer (superseded by a later
// reschedule) recognizes itself by generation and does nothing.
func (s *Service) expire(token string, gen uint64) {
	s.mu.Lock()
	e, ok := s.sessions[token]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	hooks, userID := s.endLocked(token, e, ReasonIdle)
	s.mu.Unlock()

	log.Printf("[sessions] session for user %s expired due to inactivity", userID)
	runHooks(hooks, userID, ReasonIdle)
}

// endLocked removes a session and clears everything the session owned. The
// inactivity notice is set only for involuntary termination. Must be called
// with mu held; returns the hooks to run after the lock is released.
func (s *Service) endLocked(token string, e *entry, reason EndReason) ([]EndHook, string) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	userID := e.session.UserID
	delete(s.sessions, token)
	delete(s.drafts, userID)
	if reason == ReasonIdle {
		s.expired[userID] = true
	}
	return s.onEnd, userID
}

func runHooks(hooks []EndHook, userID string, reason EndReason) {
	for _, hook := range hooks {
		hook(userID, reason)
	}
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
