package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"barangayportal/api"
	"barangayportal/services/documents"
	"barangayportal/services/sessions"
	"barangayportal/utils"
)

// DocumentsHandler serves document request endpoints for residents and the
// back office.
type DocumentsHandler struct {
	documents *documents.Service
	sessions  *sessions.Service
}

func NewDocumentsHandler(svc *documents.Service, sessionsSvc *sessions.Service) *DocumentsHandler {
	return &DocumentsHandler{documents: svc, sessions: sessionsSvc}
}

// SubmitRequest represents the request-a-document body.
type SubmitRequest struct {
	DocumentType string `json:"documentType"`
	Purpose      string `json:"purpose"`
}

// Submit files a new document request for the authenticated resident.
func (h *DocumentsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.documents.Submit(r.Context(), api.GetUserID(r), req.DocumentType, req.Purpose)
	if err != nil {
		if errors.Is(err, documents.ErrInvalidDocumentType) {
			utils.RespondError(w, http.StatusBadRequest, "unknown document type")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to submit request")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

// SaveDraft stores the caller's in-progress request form so a dropped
// connection does not lose it. The draft dies with the session.
func (h *DocumentsHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.sessions.SaveDraft(api.GetToken(r), draft); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "session expired")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "draft saved")
}

// Draft returns the caller's saved request form draft, if one exists.
func (h *DocumentsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.sessions.Draft(api.GetToken(r))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no draft saved")
		return
	}
	utils.RespondJSON(w, http.StatusOK, draft)
}

// Mine lists the authenticated user's document requests.
func (h *DocumentsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.documents.ListForUser(r.Context(), api.GetUserID(r))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load requests")
		return
	}
	utils.RespondJSON(w, http.StatusOK, requests)
}

// Pending lists requests awaiting review. Admin only.
func (h *DocumentsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.documents.ListPending(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load requests")
		return
	}
	utils.RespondJSON(w, http.StatusOK, requests)
}

// ReviewRequest represents the approve/reject body.
type ReviewRequest struct {
	FeeCentavos int64  `json:"feeCentavos"`
	Remarks     string `json:"remarks"`
}

// Approve approves a pending request with the assessed fee. Admin only.
func (h *DocumentsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.documents.Approve(r.Context(), mux.Vars(r)["id"], req.FeeCentavos, api.GetUserID(r))
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

// Reject declines a pending request. Admin only.
func (h *DocumentsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.documents.Reject(r.Context(), mux.Vars(r)["id"], api.GetUserID(r), req.Remarks)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

// Release hands a paid or waived document over. Admin only.
func (h *DocumentsHandler) Release(w http.ResponseWriter, r *http.Request) {
	updated, err := h.documents.Release(r.Context(), mux.Vars(r)["id"], api.GetUserID(r))
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

func (h *DocumentsHandler) respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, documents.ErrRequestNotFound):
		utils.RespondError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, documents.ErrInvalidStatus):
		utils.RespondError(w, http.StatusConflict, "request is not in a state that allows this action")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to update request")
	}
}
