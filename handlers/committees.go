package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"barangayportal/models"
	"barangayportal/services/committees"
	"barangayportal/utils"
)

// CommitteesHandler serves the committee directory.
type CommitteesHandler struct {
	committees *committees.Service
}

func NewCommitteesHandler(svc *committees.Service) *CommitteesHandler {
	return &CommitteesHandler{committees: svc}
}

// List returns all committees. No authentication required.
func (h *CommitteesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.committees.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load committees")
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

// CommitteeRequest represents the create/update body.
type CommitteeRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Chairperson string                   `json:"chairperson"`
	Members     []models.CommitteeMember `json:"members"`
}

// Create adds a committee. Admin only.
func (h *CommitteesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CommitteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.committees.Create(r.Context(), req.Name, req.Description, req.Chairperson, req.Members)
	if err != nil {
		if errors.Is(err, committees.ErrNameRequired) {
			utils.RespondError(w, http.StatusBadRequest, "committee name is required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to save committee")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

// Update replaces a committee's details. Admin only.
func (h *CommitteesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CommitteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.committees.Update(r.Context(), mux.Vars(r)["id"], req.Name,
		req.Description, req.Chairperson, req.Members)
	if err != nil {
		if errors.Is(err, committees.ErrCommitteeNotFound) {
			utils.RespondError(w, http.StatusNotFound, "committee not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to update committee")
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

// Delete removes a committee. Admin only.
func (h *CommitteesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.committees.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, committees.ErrCommitteeNotFound) {
			utils.RespondError(w, http.StatusNotFound, "committee not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete committee")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "committee deleted")
}
