package committees

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"barangayportal/internal/database"
	"barangayportal/models"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(database.NewCommitteeRepository(db.Connection()))
}

func TestCreateAndGet(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "Peace and Order", "Handles tanod operations.", "Kgd. Santos",
		[]models.CommitteeMember{{Name: "J. Reyes", Position: "Secretary"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Chairperson != "Kgd. Santos" || len(got.Members) != 1 {
		t.Errorf("unexpected committee: %+v", got)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Create(context.Background(), "  ", "", "", nil)
	if !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}

func TestUpdateMembership(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c, _ := svc.Create(ctx, "Health", "", "Kgd. Dela Cruz", nil)

	updated, err := svc.Update(ctx, c.ID, "", "Barangay health station.", "Kgd. Dela Cruz",
		[]models.CommitteeMember{{Name: "A. Lim", Position: "BHW"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Health" {
		t.Errorf("empty name should keep the original, got %q", updated.Name)
	}
	if len(updated.Members) != 1 || updated.Members[0].Position != "BHW" {
		t.Errorf("membership not updated: %+v", updated.Members)
	}
}

func TestDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c, _ := svc.Create(ctx, "Sports", "", "Kgd. Tan", nil)
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrCommitteeNotFound) {
		t.Errorf("expected ErrCommitteeNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, ErrCommitteeNotFound) {
		t.Errorf("expected ErrCommitteeNotFound on second delete, got %v", err)
	}
}
