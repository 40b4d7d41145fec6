package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"barangayportal/api"
	"barangayportal/services/access"
	"barangayportal/services/sessions"
)

// Registry bundles every handler the router mounts.
type Registry struct {
	Auth          *AuthHandler
	Notifications *NotificationsHandler
	Documents     *DocumentsHandler
	Payments      *PaymentsHandler
	Terms         *TermsHandler
	Announcements *AnnouncementsHandler
	Committees    *CommitteesHandler
	Banners       *BannersHandler
	Accounts      *AccountsHandler
	Maintenance   *MaintenanceHandler
}

// MountRoutes attaches all endpoints to the router. The maintenance gate
// wraps everything; public routes skip session auth; admin routes sit behind
// the role gate with its forced-logout side effect.
func MountRoutes(r *mux.Router, h Registry, sessionsSvc *sessions.Service, lockout *access.Lockout, maintenance *access.Controller, bypassKeyword string) {
	r.Use(api.MaintenanceMiddleware(maintenance.State, bypassKeyword, sessionsSvc))

	// Public routes
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)
	r.HandleFunc("/api/auth/login", api.RateLimitHandlerFunc(loginLimiter, h.Auth.Login)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/auth/register", h.Auth.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/announcements", h.Announcements.ListPublished).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/announcements/{slug}", h.Announcements.Get).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/committees", h.Committees.List).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/maintenance", h.Maintenance.Status).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/maintenance/bypass", h.Maintenance.Bypass).Methods(http.MethodPost, http.MethodOptions)

	// Authenticated routes
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(api.SessionAuthMiddleware(sessionsSvc))
	authed.Use(api.AdminOnlyMiddleware(lockout))

	authed.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/auth/activity", h.Auth.Activity).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/auth/password", h.Auth.ChangePassword).Methods(http.MethodPut, http.MethodOptions)

	authed.HandleFunc("/notifications/queue", h.Notifications.Queue).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/notifications/queue/alert/dismiss", h.Notifications.DismissAlert).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/notifications/queue/warning/dismiss", h.Notifications.DismissWarning).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/notifications/recent", h.Notifications.Recent).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/notifications/{id}/read", h.Notifications.MarkRead).Methods(http.MethodPatch, http.MethodOptions)

	authed.HandleFunc("/document-requests", h.Documents.Submit).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/document-requests/my-requests", h.Documents.Mine).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/document-requests/draft", h.Documents.SaveDraft).Methods(http.MethodPut, http.MethodOptions)
	authed.HandleFunc("/document-requests/draft", h.Documents.Draft).Methods(http.MethodGet, http.MethodOptions)

	authed.HandleFunc("/payments/create-link", h.Payments.CreateLink).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/payments/verify/{id}", h.Payments.Verify).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/payments/{id}/watch", h.Payments.CancelWatch).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/terms/status", h.Terms.Status).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/terms/accept", h.Terms.Accept).Methods(http.MethodPost, http.MethodOptions)

	authed.HandleFunc("/profile", h.Accounts.UpdateProfile).Methods(http.MethodPut, http.MethodOptions)

	// Outside the /api/admin prefix but still admin-area; the role gate
	// covers /api/banners by prefix.
	authed.HandleFunc("/banners/upload", h.Banners.Upload).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/banners/upload/temp", h.Banners.Discard).Methods(http.MethodDelete, http.MethodOptions)

	// Admin routes. AdminOnlyMiddleware on the parent subrouter denies
	// residents anywhere under /api/admin before these match.
	admin := authed.PathPrefix("/admin").Subrouter()

	admin.HandleFunc("/users", h.Accounts.List).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/users", h.Accounts.Create).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/users/pending-verification", h.Accounts.ListPendingVerification).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/users/{id}/reset-password", h.Accounts.ResetPassword).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/users/{id}/verification", h.Accounts.SetVerification).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/users/{id}", h.Accounts.Delete).Methods(http.MethodDelete, http.MethodOptions)

	admin.HandleFunc("/documents/pending", h.Documents.Pending).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/documents/{id}/approve", h.Documents.Approve).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/documents/{id}/reject", h.Documents.Reject).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/documents/{id}/release", h.Documents.Release).Methods(http.MethodPost, http.MethodOptions)

	admin.HandleFunc("/announcements", h.Announcements.ListAll).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/announcements", h.Announcements.Create).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/announcements/{slug}", h.Announcements.Update).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/announcements/{slug}/publish", h.Announcements.Publish).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/announcements/{slug}", h.Announcements.Delete).Methods(http.MethodDelete, http.MethodOptions)

	admin.HandleFunc("/committees", h.Committees.Create).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/committees/{id}", h.Committees.Update).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/committees/{id}", h.Committees.Delete).Methods(http.MethodDelete, http.MethodOptions)

	admin.HandleFunc("/maintenance", h.Maintenance.Toggle).Methods(http.MethodPut, http.MethodOptions)
}
