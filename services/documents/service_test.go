package documents

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"barangayportal/internal/database"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, title, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, title+": "+msg)
}

func setupTestService(t *testing.T) (*Service, *fakeNotifier) {
	t.Helper()
	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	notifier := &fakeNotifier{}
	return NewService(database.NewDocumentRepository(db.Connection()), notifier), notifier
}

func TestSubmit(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	req, err := svc.Submit(ctx, "user-1", "barangay-clearance", "employment")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Status != "pending" || req.PaymentStatus != "unpaid" {
		t.Errorf("unexpected initial state: %s/%s", req.Status, req.PaymentStatus)
	}

	_, err = svc.Submit(ctx, "user-1", "drivers-license", "")
	if !errors.Is(err, ErrInvalidDocumentType) {
		t.Errorf("expected ErrInvalidDocumentType, got %v", err)
	}
}

func TestApprove_WithFeeNotifiesRequester(t *testing.T) {
	svc, notifier := setupTestService(t)
	ctx := context.Background()

	req, _ := svc.Submit(ctx, "user-1", "barangay-clearance", "employment")
	approved, err := svc.Approve(ctx, req.ID, 10000, "captain")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != "approved" || approved.FeeCentavos != 10000 {
		t.Errorf("unexpected approved state: %+v", approved)
	}
	if !approved.IsApprovedUnpaid() {
		t.Error("approved request with fee should be approved-unpaid")
	}

	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "₱100.00") {
		t.Errorf("expected approval notification with formatted fee, got %v", notifier.messages)
	}
}

func TestApprove_ZeroFeeWaivesPayment(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	req, _ := svc.Submit(ctx, "user-1", "certificate-of-indigency", "medical assistance")
	approved, err := svc.Approve(ctx, req.ID, 0, "secretary")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.PaymentStatus != "waived" {
		t.Errorf("expected waived payment, got %q", approved.PaymentStatus)
	}
	if approved.IsApprovedUnpaid() {
		t.Error("waived request must not count as approved-unpaid")
	}
}

func TestApprove_OnlyFromPending(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	req, _ := svc.Submit(ctx, "user-1", "barangay-clearance", "")
	svc.Approve(ctx, req.ID, 5000, "captain")

	if _, err := svc.Approve(ctx, req.ID, 5000, "captain"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus on double approve, got %v", err)
	}
}

func TestReject(t *testing.T) {
	svc, notifier := setupTestService(t)
	ctx := context.Background()

	req, _ := svc.Submit(ctx, "user-1", "business-permit", "sari-sari store")
	rejected, err := svc.Reject(ctx, req.ID, "secretary", "incomplete requirements")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != "rejected" || rejected.Remarks != "incomplete requirements" {
		t.Errorf("unexpected rejected state: %+v", rejected)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("expected rejection notification, got %v", notifier.messages)
	}
}

func TestMarkPaidAndRelease(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	req, _ := svc.Submit(ctx, "user-1", "barangay-clearance", "")
	svc.Approve(ctx, req.ID, 10000, "captain")

	// Cannot release while unpaid.
	if _, err := svc.Release(ctx, req.ID, "secretary"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus releasing unpaid request, got %v", err)
	}

	paid, err := svc.MarkPaid(ctx, req.ID)
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if paid.PaymentStatus != "paid" {
		t.Errorf("expected paid, got %q", paid.PaymentStatus)
	}

	released, err := svc.Release(ctx, req.ID, "secretary")
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if released.Status != "released" {
		t.Errorf("expected released, got %q", released.Status)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}
