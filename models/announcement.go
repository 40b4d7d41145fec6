package models

import "time"

// Announcement is a public notice published on the portal homepage.
type Announcement struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	BannerURL   string     `json:"bannerUrl,omitempty"`
	AuthorID    string     `json:"authorId"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsLive reports whether the announcement should be visible at the given time.
func (a Announcement) IsLive(now time.Time) bool {
	if a.PublishedAt == nil || now.Before(*a.PublishedAt) {
		return false
	}
	if a.ExpiresAt != nil && now.After(*a.ExpiresAt) {
		return false
	}
	return true
}
