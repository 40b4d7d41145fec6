package models

import "time"

// TermsAcceptance records a user's acceptance of the portal terms of service,
// including the free-hand signature captured at acceptance time.
type TermsAcceptance struct {
	UserID     string    `json:"userId"`
	Signature  string    `json:"signature"` // base64 image data blob
	UserAgent  string    `json:"userAgent,omitempty"`
	AcceptedAt time.Time `json:"acceptedAt"`
}
