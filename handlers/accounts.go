package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"barangayportal/api"
	"barangayportal/models"
	"barangayportal/services/accounts"
	"barangayportal/services/sessions"
	"barangayportal/utils"
)

// AccountsHandler serves back-office user management and resident profile
// updates.
type AccountsHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
}

func NewAccountsHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service) *AccountsHandler {
	return &AccountsHandler{accounts: accountsSvc, sessions: sessionsSvc}
}

// List returns all portal users. Admin only.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.accounts.List())
}

// CreateRequest represents the admin create-user body.
type CreateRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Create adds a user with an explicit role. Admin only.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.CreateWithRole(req.Username, req.Password, req.Role, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameExists):
			utils.RespondError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, accounts.ErrInvalidRole):
			utils.RespondError(w, http.StatusBadRequest, "unknown role")
		case errors.Is(err, accounts.ErrUsernameRequired), errors.Is(err, accounts.ErrPasswordRequired):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

// ResetPassword issues a temporary password for a user and revokes their
// sessions. Admin only.
func (h *AccountsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	temp, err := h.accounts.ResetPassword(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	h.sessions.RevokeAllForUser(id)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"temporaryPassword": temp})
}

// VerifyRequest represents the verification decision body.
type VerifyRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// SetVerification records a verification decision on a resident. Admin only.
func (h *AccountsHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accounts.SetVerificationStatus(mux.Vars(r)["id"], req.Status, req.RejectionReason); err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			utils.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondMessage(w, http.StatusOK, "verification status updated")
}

// Delete removes a user and their sessions. Admin only.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.accounts.Delete(id); err != nil {
		switch {
		case errors.Is(err, accounts.ErrUserNotFound):
			utils.RespondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, accounts.ErrCannotDeleteAdmin):
			utils.RespondError(w, http.StatusForbidden, "the barangay captain account cannot be deleted")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}
	h.sessions.RevokeAllForUser(id)
	utils.RespondMessage(w, http.StatusOK, "user deleted")
}

// ProfileRequest represents the resident profile completion body.
type ProfileRequest struct {
	Complete    bool       `json:"complete"`
	PSADeadline *time.Time `json:"psaDeadline"`
	PSADaysLeft *float64   `json:"psaDaysLeft"`
}

// UpdateProfile records the authenticated user's profile completion state,
// including the server-synced PSA deadline fields.
func (h *AccountsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := api.GetUserID(r)
	if err := h.accounts.UpdateProfile(userID, req.Complete, req.PSADeadline, req.PSADaysLeft); err != nil {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	user, _ := h.accounts.Get(userID)
	utils.RespondJSON(w, http.StatusOK, user)
}

// ListPendingVerification returns residents awaiting verification. Admin only.
func (h *AccountsHandler) ListPendingVerification(w http.ResponseWriter, r *http.Request) {
	var pending []models.User
	for _, u := range h.accounts.List() {
		if u.VerificationStatus == models.VerificationPending && models.IsResidentRole(u.Role) {
			pending = append(pending, u)
		}
	}
	utils.RespondJSON(w, http.StatusOK, pending)
}
