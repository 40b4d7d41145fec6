package models

import "time"

// Session represents an authenticated portal session. A session exists if and
// only if a valid token was issued for it; the sessions service owns the idle
// timer exclusively.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"` // cached from the user for gate checks
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
}

// IdleDeadline returns the moment the session expires if no further activity
// is recorded.
func (s Session) IdleDeadline(idleTimeout time.Duration) time.Time {
	return s.LastActivity.Add(idleTimeout)
}
