package terms

import (
	"errors"
	"testing"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create terms service: %v", err)
	}
	return svc
}

func TestAccept(t *testing.T) {
	svc := setupTestService(t)

	a, err := svc.Accept("user-1", "data:image/png;base64,abc", "test-agent", true)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if a.AcceptedAt.IsZero() {
		t.Error("expected AcceptedAt to be set")
	}
	if !svc.Accepted("user-1") {
		t.Error("user should be recorded as accepted")
	}
	if svc.Accepted("user-2") {
		t.Error("other users must not be affected")
	}
}

func TestAccept_RequiresSignature(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Accept("user-1", "   ", "agent", true)
	if !errors.Is(err, ErrSignatureRequired) {
		t.Errorf("expected ErrSignatureRequired, got %v", err)
	}
	if svc.Accepted("user-1") {
		t.Error("failed acceptance must not be recorded")
	}
}

func TestAccept_RequiresFullScroll(t *testing.T) {
	svc := setupTestService(t)

	// A signature alone is not enough.
	_, err := svc.Accept("user-1", "data:image/png;base64,abc", "agent", false)
	if !errors.Is(err, ErrTermsNotRead) {
		t.Errorf("expected ErrTermsNotRead, got %v", err)
	}
	if svc.Accepted("user-1") {
		t.Error("failed acceptance must not be recorded")
	}
}

func TestAcceptancePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("failed to create terms service: %v", err)
	}
	svc.Accept("user-1", "data:image/png;base64,abc", "agent", true)

	reloaded, err := NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload terms service: %v", err)
	}
	if !reloaded.Accepted("user-1") {
		t.Error("acceptance should survive reload")
	}
	a := reloaded.Acceptance("user-1")
	if a == nil || a.Signature != "data:image/png;base64,abc" {
		t.Errorf("unexpected reloaded acceptance: %+v", a)
	}
}
