package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"barangayportal/api"
	"barangayportal/services/announcements"
	"barangayportal/services/uploads"
	"barangayportal/utils"
)

// AnnouncementsHandler serves public announcements and their back-office
// management.
type AnnouncementsHandler struct {
	announcements *announcements.Service
	uploads       *uploads.Service
}

func NewAnnouncementsHandler(svc *announcements.Service, uploadsSvc *uploads.Service) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: svc, uploads: uploadsSvc}
}

// ListPublished returns announcements currently visible to the public.
// No authentication required.
func (h *AnnouncementsHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	items, err := h.announcements.ListPublished(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load announcements")
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

// Get returns one announcement by slug.
func (h *AnnouncementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcements.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "announcement not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, a)
}

// ListAll returns every announcement including drafts. Admin only.
func (h *AnnouncementsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.announcements.ListAll(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load announcements")
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

// AnnouncementRequest represents the create/update body. BannerUploadID
// references a staged banner upload; it is promoted when the announcement
// is saved.
type AnnouncementRequest struct {
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	BannerUploadID string     `json:"bannerUploadId"`
	Publish        bool       `json:"publish"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// Create saves a new announcement. Admin only.
func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bannerURL, err := h.promoteBanner(req.BannerUploadID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "banner upload not found; upload it again")
		return
	}

	a, err := h.announcements.Create(r.Context(), req.Title, req.Body, bannerURL,
		api.GetUserID(r), req.Publish, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, announcements.ErrTitleRequired) {
			utils.RespondError(w, http.StatusBadRequest, "title is required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to save announcement")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, a)
}

// Update edits an announcement. Admin only.
func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req AnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bannerURL, err := h.promoteBanner(req.BannerUploadID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "banner upload not found; upload it again")
		return
	}
	slug := mux.Vars(r)["slug"]
	if bannerURL == "" {
		if existing, err := h.announcements.GetBySlug(r.Context(), slug); err == nil {
			bannerURL = existing.BannerURL
		}
	}

	a, err := h.announcements.Update(r.Context(), slug, req.Title, req.Body, bannerURL, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, announcements.ErrAnnouncementNotFound) {
			utils.RespondError(w, http.StatusNotFound, "announcement not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to update announcement")
		return
	}
	utils.RespondJSON(w, http.StatusOK, a)
}

func (h *AnnouncementsHandler) promoteBanner(uploadID string) (string, error) {
	if uploadID == "" {
		return "", nil
	}
	return h.uploads.Promote(uploadID)
}

// Publish makes a draft live. Admin only.
func (h *AnnouncementsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcements.Publish(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "announcement not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, a)
}

// Delete removes an announcement. Admin only.
func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.announcements.Delete(r.Context(), mux.Vars(r)["slug"]); err != nil {
		utils.RespondError(w, http.StatusNotFound, "announcement not found")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "announcement deleted")
}
