package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"barangayportal/internal/auth"
	"barangayportal/services/access"
	"barangayportal/services/sessions"
	"barangayportal/utils"
)

// Re-export from auth package for handler convenience
var (
	GetUserID = auth.GetUserID
	GetRole   = auth.GetRole
	GetToken  = auth.GetToken
)

// SessionAuthMiddleware validates the bearer token on every request,
// refreshes the idle timer, and injects the user's identity into the
// request context.
func SessionAuthMiddleware(sessionsSvc *sessions.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			session, err := sessionsSvc.Validate(token)
			if err != nil {
				if errors.Is(err, sessions.ErrSessionExpired) {
					utils.RespondError(w, http.StatusUnauthorized, "session expired due to inactivity")
					return
				}
				utils.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			// Any authenticated request counts as activity. Touch is
			// throttled internally so bursts don't thrash the timer.
			sessionsSvc.Touch(token)

			ctx := context.WithValue(r.Context(), auth.ContextKeyUserID, session.UserID)
			ctx = context.WithValue(ctx, auth.ContextKeyRole, session.Role)
			ctx = context.WithValue(ctx, auth.ContextKeyToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnlyMiddleware denies residents access to back-office routes. A
// denied resident gets a full-page denial response and their session is
// scheduled for forced logout; hitting the route again does not stack a
// second logout timer.
func AdminOnlyMiddleware(lockout *access.Lockout) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			role := GetRole(r)
			if access.CheckRoute(role, r.URL.Path) == access.DenyAdminArea {
				lockout.Schedule(GetToken(r), GetUserID(r), r.URL.Path)
				utils.RespondError(w, http.StatusForbidden,
					"This area is restricted to barangay officials. You will be signed out.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// maintenanceExempt are routes that must stay reachable while the portal is
// down: the status endpoint (so the client can show the banner), the bypass
// route (so the keyword can be submitted), and login (so officials can get
// in to turn maintenance off).
var maintenanceExempt = map[string]bool{
	access.BypassRoute: true,
	"/api/maintenance": true,
	"/api/auth/login":  true,
}

// MaintenanceMiddleware blocks requests while maintenance mode is active.
// Admin roles pass through, as does anyone presenting the configured bypass
// keyword. The middleware runs before session auth, so it resolves the role
// from the session itself when the context has none yet.
func MaintenanceMiddleware(state func() access.MaintenanceState, bypassKeyword string, sessionsSvc *sessions.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || maintenanceExempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			st := state()
			if !st.Active {
				next.ServeHTTP(w, r)
				return
			}

			role := GetRole(r)
			if role == "" && sessionsSvc != nil {
				if token := extractToken(r); token != "" {
					if session, err := sessionsSvc.Validate(token); err == nil {
						role = session.Role
					}
				}
			}

			bypass := access.MatchBypassKeyword(bypassKeyword, r.Header.Get("X-Bypass-Keyword"))
			if access.CheckMaintenance(st, role, bypass) == access.DenyMaintenance {
				w.Header().Set("Retry-After", st.EndsAt.UTC().Format(http.TimeFormat))
				utils.RespondError(w, http.StatusServiceUnavailable, st.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the session token from the Authorization header, or
// the ?token= query param as a fallback for download links.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	return ""
}
