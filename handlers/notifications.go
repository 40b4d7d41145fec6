package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"barangayportal/api"
	"barangayportal/services/notifications"
	"barangayportal/utils"
)

// NotificationsHandler serves the post-login modal queue and the persistent
// notification tray.
type NotificationsHandler struct {
	notifications *notifications.Service
}

func NewNotificationsHandler(svc *notifications.Service) *NotificationsHandler {
	return &NotificationsHandler{notifications: svc}
}

// Queue returns the user's current modal queue position.
func (h *NotificationsHandler) Queue(w http.ResponseWriter, r *http.Request) {
	q, err := h.notifications.Current(api.GetUserID(r))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "no notification queue; sign in first")
		return
	}
	utils.RespondJSON(w, http.StatusOK, q)
}

// DismissAlert acknowledges the approved-document alert. If a profile
// warning is queued behind it, the warning surfaces shortly after.
func (h *NotificationsHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	q, err := h.notifications.DismissAlert(api.GetUserID(r))
	if err != nil {
		h.respondQueueError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, q)
}

// DismissWarning acknowledges the profile-completion warning.
func (h *NotificationsHandler) DismissWarning(w http.ResponseWriter, r *http.Request) {
	q, err := h.notifications.DismissWarning(api.GetUserID(r))
	if err != nil {
		h.respondQueueError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, q)
}

func (h *NotificationsHandler) respondQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notifications.ErrNoQueue):
		utils.RespondError(w, http.StatusNotFound, "no notification queue; sign in first")
	case errors.Is(err, notifications.ErrIllegalTransition):
		utils.RespondError(w, http.StatusConflict, "nothing to dismiss in the current state")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to update queue")
	}
}

// Recent lists the user's tray notifications, newest first.
func (h *NotificationsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	items, err := h.notifications.Recent(r.Context(), api.GetUserID(r), limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

// MarkRead marks one tray notification as read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.notifications.MarkRead(r.Context(), api.GetUserID(r), id)
	if err != nil {
		if errors.Is(err, notifications.ErrNotificationNotFound) {
			utils.RespondError(w, http.StatusNotFound, "notification not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "marked read")
}
