package auth

import "net/http"

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyUserID is the key for the authenticated user ID in the context
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyRole is the key for the user's role code in the context
	ContextKeyRole ContextKey = "role"
	// ContextKeyToken is the key for the session token in the context
	ContextKeyToken ContextKey = "token"
)

// GetUserID retrieves the authenticated user ID from the request context.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// GetRole retrieves the authenticated user's role from the request context.
func GetRole(r *http.Request) string {
	if role, ok := r.Context().Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// GetToken retrieves the session token from the request context.
func GetToken(r *http.Request) string {
	if token, ok := r.Context().Value(ContextKeyToken).(string); ok {
		return token
	}
	return ""
}
