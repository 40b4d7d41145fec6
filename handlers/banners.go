package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"barangayportal/services/uploads"
	"barangayportal/utils"
)

// BannersHandler stages announcement banner uploads. Admin only.
type BannersHandler struct {
	uploads *uploads.Service
}

func NewBannersHandler(svc *uploads.Service) *BannersHandler {
	return &BannersHandler{uploads: svc}
}

// Upload stages a banner file from a multipart form. The file stays in the
// temp area until the announcement is saved or the upload is discarded.
func (h *BannersHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("banner")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "banner file is required")
		return
	}
	defer file.Close()

	up, err := h.uploads.Stage(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrFileTooLarge):
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "banner must be 10MB or smaller")
		case errors.Is(err, uploads.ErrUnsupportedType):
			utils.RespondError(w, http.StatusUnsupportedMediaType, "banner must be an image or video")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to store banner")
		}
		return
	}
	utils.RespondJSON(w, http.StatusCreated, up)
}

// Discard removes a staged banner that will not be used. Safe to call
// repeatedly for the same URL.
func (h *BannersHandler) Discard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		utils.RespondError(w, http.StatusBadRequest, "url is required")
		return
	}
	h.uploads.DiscardTempURL(body.URL)
	utils.RespondMessage(w, http.StatusOK, "banner discarded")
}
