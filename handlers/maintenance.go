package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"barangayportal/config"
	"barangayportal/services/access"
	"barangayportal/utils"
)

// MaintenanceHandler serves maintenance status, toggling, and keyword bypass.
type MaintenanceHandler struct {
	controller    *access.Controller
	bypassKeyword string
}

func NewMaintenanceHandler(controller *access.Controller, bypassKeyword string) *MaintenanceHandler {
	return &MaintenanceHandler{controller: controller, bypassKeyword: bypassKeyword}
}

// StatusResponse represents the public maintenance status.
type StatusResponse struct {
	Active  bool       `json:"active"`
	Message string     `json:"message,omitempty"`
	EndsAt  *time.Time `json:"endsAt,omitempty"`
}

// Status reports whether maintenance mode is on. Public.
func (h *MaintenanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.controller.State()
	resp := StatusResponse{Active: st.Active, Message: st.Message}
	if st.Active {
		resp.EndsAt = &st.EndsAt
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// BypassRequest represents the keyword bypass body.
type BypassRequest struct {
	Keyword string `json:"keyword"`
}

// Bypass checks the supplied keyword and, on match, grants the caller a
// bypass flag to present on later requests.
func (h *MaintenanceHandler) Bypass(w http.ResponseWriter, r *http.Request) {
	var req BypassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !access.MatchBypassKeyword(h.bypassKeyword, req.Keyword) {
		utils.RespondError(w, http.StatusForbidden, "incorrect keyword")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"bypassKeyword": req.Keyword})
}

// ToggleRequest represents the admin enable/disable body. End is a free-form
// date string; unparseable values fall back to 30 minutes from now.
type ToggleRequest struct {
	Active  bool   `json:"active"`
	Message string `json:"message"`
	End     string `json:"end"`
}

// Toggle switches maintenance mode. Admin only.
func (h *MaintenanceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Active {
		h.controller.Disable()
		utils.RespondMessage(w, http.StatusOK, "maintenance mode disabled")
		return
	}

	msg := req.Message
	if msg == "" {
		msg = "The portal is undergoing scheduled maintenance."
	}
	endsAt := config.ParseMaintenanceEnd(req.End, time.Now())
	h.controller.Enable(msg, endsAt)
	utils.RespondJSON(w, http.StatusOK, StatusResponse{Active: true, Message: msg, EndsAt: &endsAt})
}
