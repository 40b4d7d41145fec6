package database

import (
	"context"
	"testing"
	"time"

	"barangayportal/models"
)

func setupAnnouncementRepo(t *testing.T) *AnnouncementRepository {
	t.Helper()
	return NewAnnouncementRepository(setupTestDB(t).Connection())
}

func TestAnnouncementInsertAndGetBySlug(t *testing.T) {
	repo := setupAnnouncementRepo(t)
	ctx := context.Background()

	a := &models.Announcement{
		Slug:     "fiesta-2026",
		Title:    "Barangay Fiesta 2026",
		Body:     "Join us at the covered court.",
		AuthorID: "captain-1",
	}
	if err := repo.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if a.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := repo.GetBySlug(ctx, "fiesta-2026")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got == nil || got.Title != "Barangay Fiesta 2026" {
		t.Errorf("unexpected announcement: %+v", got)
	}

	missing, err := repo.GetBySlug(ctx, "nope")
	if err != nil {
		t.Fatalf("GetBySlug for missing failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown slug")
	}
}

func TestAnnouncementListPublished(t *testing.T) {
	repo := setupAnnouncementRepo(t)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	live := &models.Announcement{Slug: "live", Title: "Live", PublishedAt: &past}
	draft := &models.Announcement{Slug: "draft", Title: "Draft"}
	expired := &models.Announcement{Slug: "expired", Title: "Expired", PublishedAt: &past, ExpiresAt: &past}
	scheduled := &models.Announcement{Slug: "soon", Title: "Soon", PublishedAt: &future}

	for _, a := range []*models.Announcement{live, draft, expired, scheduled} {
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("Insert %s failed: %v", a.Slug, err)
		}
	}

	published, err := repo.ListPublished(ctx, now)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "live" {
		t.Errorf("expected only the live announcement, got %+v", published)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 announcements, got %d", len(all))
	}
}

func TestAnnouncementUpdateAndDelete(t *testing.T) {
	repo := setupAnnouncementRepo(t)
	ctx := context.Background()

	a := &models.Announcement{Slug: "cleanup-drive", Title: "Cleanup Drive"}
	repo.Insert(ctx, a)

	a.Title = "Coastal Cleanup Drive"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := repo.GetBySlug(ctx, "cleanup-drive")
	if got.Title != "Coastal Cleanup Drive" {
		t.Errorf("expected updated title, got %q", got.Title)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ = repo.GetBySlug(ctx, "cleanup-drive")
	if got != nil {
		t.Error("expected announcement to be deleted")
	}
}
