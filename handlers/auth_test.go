package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"barangayportal/models"
	"barangayportal/services/accounts"
	"barangayportal/services/notifications"
	"barangayportal/services/sessions"
	"barangayportal/services/terms"
	"barangayportal/utils"
)

// fakeDocs serves canned document requests per user.
type fakeDocs struct {
	mu       sync.Mutex
	requests map[string][]models.DocumentRequest
}

func (f *fakeDocs) ListForUser(ctx context.Context, userID string) ([]models.DocumentRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[userID], nil
}

// fakeStore is an in-memory tray notification store.
type fakeStore struct {
	mu    sync.Mutex
	items []models.Notification
}

func (f *fakeStore) Insert(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	return nil
}

func (f *fakeStore) RecentForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.items {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.UserID == userID && n.ID == id {
			f.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

type authFixture struct {
	handler  *AuthHandler
	accounts *accounts.Service
	sessions *sessions.Service
	docs     *fakeDocs
}

func setupAuthHandler(t *testing.T) *authFixture {
	t.Helper()
	accountsSvc, err := accounts.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("accounts service: %v", err)
	}
	termsSvc, err := terms.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("terms service: %v", err)
	}
	sessionsSvc := sessions.NewService(time.Minute, time.Second)
	docs := &fakeDocs{requests: make(map[string][]models.DocumentRequest)}
	notificationsSvc := notifications.NewService(docs, accountsSvc, &fakeStore{}, time.Millisecond)
	sessionsSvc.OnEnd(func(userID string, reason sessions.EndReason) {
		notificationsSvc.Clear(userID)
	})

	return &authFixture{
		handler:  NewAuthHandler(accountsSvc, sessionsSvc, notificationsSvc, termsSvc),
		accounts: accountsSvc,
		sessions: sessionsSvc,
		docs:     docs,
	}
}

func doLogin(t *testing.T, h *AuthHandler, username, password string) (*httptest.ResponseRecorder, LoginResponse) {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	h.Login(rec, req)

	var env struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&env)
	return rec, env.Data
}

func TestLogin(t *testing.T) {
	fx := setupAuthHandler(t)
	fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")

	rec, resp := doLogin(t, fx.handler, "juan", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Token == "" || resp.Role != models.RoleResident {
		t.Errorf("unexpected login response: %+v", resp)
	}
	if resp.SessionExpired {
		t.Error("fresh account must not report an expired session")
	}
	if resp.Queue.State.String() != "dismissed" {
		t.Errorf("no alerts or warnings pending, queue should be dismissed, got %q", resp.Queue.State)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	fx := setupAuthHandler(t)
	fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")

	rec, _ := doLogin(t, fx.handler, "juan", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	var env utils.Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Success {
		t.Error("failure envelope should have success=false")
	}
}

func TestLogin_SurfacesApprovedDocumentAlert(t *testing.T) {
	fx := setupAuthHandler(t)
	user, _ := fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")
	fx.docs.requests[user.ID] = []models.DocumentRequest{{
		ID:            "req-1",
		UserID:        user.ID,
		DocumentType:  models.DocBarangayClearance,
		Status:        models.RequestApproved,
		PaymentStatus: models.PaymentUnpaid,
		FeeCentavos:   10000,
	}}

	_, resp := doLogin(t, fx.handler, "juan", "secret123")
	if resp.Queue.State.String() != "alert-shown" {
		t.Fatalf("expected alert-shown, got %q", resp.Queue.State)
	}
	if resp.Queue.Alert == nil || len(resp.Queue.Alert.Requests) != 1 {
		t.Errorf("alert should list the approved unpaid request: %+v", resp.Queue.Alert)
	}
}

func TestLogin_ExplicitLogoutLeavesNoExpiryNotice(t *testing.T) {
	fx := setupAuthHandler(t)
	user, _ := fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")

	// A revoked session is an explicit logout, not idle expiry, so the next
	// login carries no expiry notice.
	fx.sessions.Start(user.ID, user.Role, "", "")
	fx.sessions.RevokeAllForUser(user.ID)

	_, resp := doLogin(t, fx.handler, "juan", "secret123")
	if resp.SessionExpired {
		t.Error("explicit revocation must not report idle expiry")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	fx := setupAuthHandler(t)
	fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")
	_, resp := doLogin(t, fx.handler, "juan", "secret123")

	if _, err := fx.sessions.Validate(resp.Token); err != nil {
		t.Fatalf("session should be valid after login: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = withSessionContext(req, resp.UserID, resp.Role, resp.Token)
	fx.handler.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if _, err := fx.sessions.Validate(resp.Token); err == nil {
		t.Error("session should be gone after logout")
	}
}

func TestActivityReportsDeadline(t *testing.T) {
	fx := setupAuthHandler(t)
	fx.accounts.Register("juan", "secret123", "Juan", "Dela Cruz")
	_, resp := doLogin(t, fx.handler, "juan", "secret123")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/activity", nil)
	req = withSessionContext(req, resp.UserID, resp.Role, resp.Token)
	fx.handler.Activity(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var env struct {
		Data struct {
			IdleDeadline time.Time `json:"idleDeadline"`
		} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &env)
	if !env.Data.IdleDeadline.After(time.Now()) {
		t.Errorf("idle deadline should be in the future: %v", env.Data.IdleDeadline)
	}
}
