package handlers

import (
	"encoding/json"
	"net/http"

	"barangayportal/api"
	"barangayportal/services/accounts"
	"barangayportal/services/notifications"
	"barangayportal/services/sessions"
	"barangayportal/services/terms"
	"barangayportal/utils"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts      *accounts.Service
	sessions      *sessions.Service
	notifications *notifications.Service
	terms         *terms.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service, notificationsSvc *notifications.Service, termsSvc *terms.Service) *AuthHandler {
	return &AuthHandler{
		accounts:      accountsSvc,
		sessions:      sessionsSvc,
		notifications: notificationsSvc,
		terms:         termsSvc,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response. Queue is the post-login modal
// queue already evaluated for this user; SessionExpired tells the client the
// previous session timed out from inactivity, reported once.
type LoginResponse struct {
	Token          string              `json:"token"`
	UserID         string              `json:"userId"`
	Username       string              `json:"username"`
	Role           string              `json:"role"`
	TermsAccepted  bool                `json:"termsAccepted"`
	SessionExpired bool                `json:"sessionExpired"`
	Queue          notifications.Queue `json:"queue"`
}

// Login authenticates a user, starts an idle-tracked session, and evaluates
// the post-login notification queue.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session, err := h.sessions.Start(user.ID, user.Role, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	resp := LoginResponse{
		Token:          session.Token,
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		TermsAccepted:  h.terms.Accepted(user.ID),
		SessionExpired: h.sessions.ConsumeExpiredNotice(user.ID),
		Queue:          h.notifications.PrepareForLogin(r.Context(), user.ID),
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// Logout ends the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := api.GetToken(r)
	if err := h.sessions.Stop(token); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "no active session")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "logged out")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.accounts.Get(api.GetUserID(r))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// Activity is the explicit heartbeat endpoint. The auth middleware already
// touches the session, so by the time we get here the timer is refreshed;
// this just reports the current deadline back.
func (h *AuthHandler) Activity(w http.ResponseWriter, r *http.Request) {
	deadline, ok := h.sessions.Deadline(api.GetToken(r))
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"idleDeadline": deadline})
}

// RegisterRequest represents the resident self-registration body.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates a resident account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Register(req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch err {
		case accounts.ErrUsernameExists:
			utils.RespondError(w, http.StatusConflict, "username already taken")
		case accounts.ErrUsernameRequired, accounts.ErrPasswordRequired:
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

// ChangePasswordRequest represents the change-password body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword updates the authenticated user's password and revokes their
// other sessions.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := api.GetUserID(r)
	user, ok := h.accounts.Get(userID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	if _, err := h.accounts.Authenticate(user.Username, req.CurrentPassword); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err := h.accounts.UpdatePassword(userID, req.NewPassword); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.sessions.RevokeAllForUser(userID)
	utils.RespondMessage(w, http.StatusOK, "password updated, please sign in again")
}
