package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"barangayportal/api"
	"barangayportal/services/terms"
	"barangayportal/utils"
)

// TermsHandler serves terms-of-service acceptance.
type TermsHandler struct {
	terms *terms.Service
}

func NewTermsHandler(svc *terms.Service) *TermsHandler {
	return &TermsHandler{terms: svc}
}

// Status reports whether the authenticated user has accepted the terms.
func (h *TermsHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]bool{
		"accepted": h.terms.Accepted(api.GetUserID(r)),
	})
}

// AcceptRequest represents the terms acceptance body.
type AcceptRequest struct {
	Signature        string `json:"signature"`
	ScrolledToBottom bool   `json:"scrolledToBottom"`
}

// Accept records the user's acceptance. Both the drawn signature and a full
// read-through of the terms are required.
func (h *TermsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acceptance, err := h.terms.Accept(api.GetUserID(r), req.Signature,
		r.Header.Get("User-Agent"), req.ScrolledToBottom)
	if err != nil {
		switch {
		case errors.Is(err, terms.ErrSignatureRequired):
			utils.RespondError(w, http.StatusBadRequest, "please sign before accepting")
		case errors.Is(err, terms.ErrTermsNotRead):
			utils.RespondError(w, http.StatusBadRequest, "please read the terms to the end before accepting")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to record acceptance")
		}
		return
	}
	utils.RespondJSON(w, http.StatusOK, acceptance)
}
