package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"barangayportal/models"
)

// AnnouncementRepository persists portal announcements.
type AnnouncementRepository struct {
	db *sql.DB
}

// NewAnnouncementRepository creates an announcement repository.
func NewAnnouncementRepository(db *sql.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Insert stores a new announcement.
func (r *AnnouncementRepository) Insert(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO announcements (id, slug, title, body, banner_url, author_id, published_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Slug, a.Title, a.Body, a.BannerURL, a.AuthorID,
		a.PublishedAt, a.ExpiresAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

// Update rewrites an announcement's editable fields.
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	a.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE announcements
		SET slug = ?, title = ?, body = ?, banner_url = ?, published_at = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		a.Slug, a.Title, a.Body, a.BannerURL, a.PublishedAt, a.ExpiresAt, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return requireRow(res)
}

// Delete removes an announcement by ID.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return requireRow(res)
}

// GetBySlug returns an announcement by its slug, or nil when absent.
func (r *AnnouncementRepository) GetBySlug(ctx context.Context, slug string) (*models.Announcement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, title, body, banner_url, author_id, published_at, expires_at, created_at, updated_at
		FROM announcements WHERE slug = ?`, slug)

	a, err := scanAnnouncement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return a, nil
}

// ListAll returns every announcement, newest first, for the back-office.
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, title, body, banner_url, author_id, published_at, expires_at, created_at, updated_at
		FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

// ListPublished returns announcements live at the given moment, newest first.
func (r *AnnouncementRepository) ListPublished(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, title, body, banner_url, author_id, published_at, expires_at, created_at, updated_at
		FROM announcements
		WHERE published_at IS NOT NULL AND published_at <= ?
		  AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY published_at DESC`, now, now)
	if err != nil {
		return nil, fmt.Errorf("list published announcements: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Body, &a.BannerURL, &a.AuthorID,
		&a.PublishedAt, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAnnouncements(rows *sql.Rows) ([]models.Announcement, error) {
	var announcements []models.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, *a)
	}
	return announcements, rows.Err()
}
