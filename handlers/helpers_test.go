package handlers

import (
	"context"
	"net/http"

	"barangayportal/internal/auth"
)

// withSessionContext injects the identity values the auth middleware would
// have set, so handlers can be exercised directly.
func withSessionContext(r *http.Request, userID, role, token string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, auth.ContextKeyRole, role)
	ctx = context.WithValue(ctx, auth.ContextKeyToken, token)
	return r.WithContext(ctx)
}
