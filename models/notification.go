package models

import "time"

// Notification is a persistent per-user notice shown in the notification
// tray (distinct from the post-login modal queue).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApprovedDocumentAlert lists the approved-but-unpaid document requests that
// must be surfaced immediately after login.
type ApprovedDocumentAlert struct {
	Requests []DocumentRequest `json:"requests"`
	Message  string            `json:"message"`
}

// ProfileCompletionWarning is the PSA profile-completion notice shown to
// residents whose completion deadline is approaching.
type ProfileCompletionWarning struct {
	DaysLeft           int       `json:"daysLeft"`
	Deadline           time.Time `json:"deadline"`
	VerificationStatus string    `json:"verificationStatus"`
	RejectionReason    string    `json:"rejectionReason,omitempty"`
}
