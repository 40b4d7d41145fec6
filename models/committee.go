package models

import "time"

// Committee is an entry in the barangay committee directory.
type Committee struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Chairperson string            `json:"chairperson"`
	Members     []CommitteeMember `json:"members"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CommitteeMember is a named member with a position within a committee.
type CommitteeMember struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}
