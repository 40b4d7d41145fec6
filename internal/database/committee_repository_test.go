package database

import (
	"context"
	"testing"

	"barangayportal/models"
)

func setupCommitteeRepo(t *testing.T) *CommitteeRepository {
	t.Helper()
	return NewCommitteeRepository(setupTestDB(t).Connection())
}

func TestCommitteeRoundTrip(t *testing.T) {
	repo := setupCommitteeRepo(t)
	ctx := context.Background()

	c := &models.Committee{
		Name:        "Peace and Order",
		Chairperson: "Kgd. Santos",
		Members: []models.CommitteeMember{
			{Name: "J. Reyes", Position: "Secretary"},
			{Name: "M. Cruz", Position: "Member"},
		},
	}
	if err := repo.Insert(ctx, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if c.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected committee to be found")
	}
	if len(got.Members) != 2 || got.Members[0].Name != "J. Reyes" {
		t.Errorf("members did not round-trip: %+v", got.Members)
	}
}

func TestCommitteeUpdateAndList(t *testing.T) {
	repo := setupCommitteeRepo(t)
	ctx := context.Background()

	c := &models.Committee{Name: "Health", Chairperson: "Kgd. Dela Cruz"}
	repo.Insert(ctx, c)
	repo.Insert(ctx, &models.Committee{Name: "Education", Chairperson: "Kgd. Ramos"})

	c.Members = []models.CommitteeMember{{Name: "A. Lim", Position: "Member"}}
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 committees, got %d", len(list))
	}
}

func TestCommitteeDelete(t *testing.T) {
	repo := setupCommitteeRepo(t)
	ctx := context.Background()

	c := &models.Committee{Name: "Sports", Chairperson: "Kgd. Tan"}
	repo.Insert(ctx, c)

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ := repo.Get(ctx, c.ID)
	if got != nil {
		t.Error("expected committee to be deleted")
	}
}
