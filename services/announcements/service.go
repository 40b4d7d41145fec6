package announcements

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"barangayportal/models"
)

var (
	// ErrAnnouncementNotFound is returned when no announcement matches.
	ErrAnnouncementNotFound = errors.New("announcement not found")

	// ErrTitleRequired is returned when creating an announcement without a title.
	ErrTitleRequired = errors.New("announcement title is required")
)

// Repository is the persistence surface the service needs. Implemented by
// database.AnnouncementRepository.
type Repository interface {
	Insert(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id string) error
	GetBySlug(ctx context.Context, slug string) (*models.Announcement, error)
	ListAll(ctx context.Context) ([]models.Announcement, error)
	ListPublished(ctx context.Context, now time.Time) ([]models.Announcement, error)
}

// Service manages public announcements shown on the portal homepage.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug. Non-ASCII characters are
// transliterated first so Filipino titles with diacritics (e.g. "Piñas")
// still produce readable slugs.
func Slugify(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Create saves a new announcement. publish controls whether it goes live
// immediately. Duplicate slugs get a numeric suffix.
func (s *Service) Create(ctx context.Context, title, body, bannerURL, authorID string, publish bool, expiresAt *time.Time) (*models.Announcement, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	slug, err := s.uniqueSlug(ctx, Slugify(title))
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Slug:      slug,
		Title:     title,
		Body:      body,
		BannerURL: bannerURL,
		AuthorID:  authorID,
		ExpiresAt: expiresAt,
	}
	if publish {
		now := s.now()
		a.PublishedAt = &now
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save announcement: %w", err)
	}
	log.Printf("[announcements] created %q (slug %s, published=%t)", title, slug, publish)
	return a, nil
}

func (s *Service) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "announcement"
	}
	slug := base
	for i := 2; ; i++ {
		existing, err := s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if existing == nil {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetBySlug returns one announcement.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Announcement, error) {
	a, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAnnouncementNotFound
	}
	return a, nil
}

// ListPublished returns announcements currently visible to the public.
func (s *Service) ListPublished(ctx context.Context) ([]models.Announcement, error) {
	return s.repo.ListPublished(ctx, s.now())
}

// ListAll returns every announcement including drafts and expired ones.
// Admin-only.
func (s *Service) ListAll(ctx context.Context) ([]models.Announcement, error) {
	return s.repo.ListAll(ctx)
}

// Update edits an existing announcement's content. The slug is stable once
// created so shared links stay valid.
func (s *Service) Update(ctx context.Context, slug, title, body, bannerURL string, expiresAt *time.Time) (*models.Announcement, error) {
	a, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(title); t != "" {
		a.Title = t
	}
	a.Body = body
	a.BannerURL = bannerURL
	a.ExpiresAt = expiresAt
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	return a, nil
}

// Publish makes a draft announcement live.
func (s *Service) Publish(ctx context.Context, slug string) (*models.Announcement, error) {
	a, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a.PublishedAt == nil {
		now := s.now()
		a.PublishedAt = &now
		if err := s.repo.Update(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to publish announcement: %w", err)
		}
	}
	return a, nil
}

// Delete removes an announcement permanently.
func (s *Service) Delete(ctx context.Context, slug string) error {
	a, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	log.Printf("[announcements] deleted %q", slug)
	return nil
}
