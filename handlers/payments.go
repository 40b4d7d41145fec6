package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"barangayportal/api"
	"barangayportal/models"
	"barangayportal/services/documents"
	"barangayportal/services/payments"
	"barangayportal/utils"
)

// PaymentsHandler issues checkout links and watches for payment settlement.
type PaymentsHandler struct {
	documents *documents.Service
	provider  *payments.Provider
	poller    *payments.Poller

	mu   sync.Mutex
	subs map[string]*payments.Subscription
}

func NewPaymentsHandler(docsSvc *documents.Service, provider *payments.Provider, poller *payments.Poller) *PaymentsHandler {
	return &PaymentsHandler{
		documents: docsSvc,
		provider:  provider,
		poller:    poller,
		subs:      make(map[string]*payments.Subscription),
	}
}

// CreateLink issues a checkout URL for an approved, unpaid request and
// starts watching the provider for settlement.
func (h *PaymentsHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RequestID == "" {
		utils.RespondError(w, http.StatusBadRequest, "requestId is required")
		return
	}

	req, err := h.documents.Get(r.Context(), body.RequestID)
	if err != nil {
		if errors.Is(err, documents.ErrRequestNotFound) {
			utils.RespondError(w, http.StatusNotFound, "request not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load request")
		return
	}
	if req.UserID != api.GetUserID(r) {
		utils.RespondError(w, http.StatusNotFound, "request not found")
		return
	}
	if !req.IsApprovedUnpaid() {
		utils.RespondError(w, http.StatusConflict, "request has no outstanding fee")
		return
	}

	link, err := h.provider.CreateLink(r.Context(), req.ID, req.FeeCentavos,
		"Barangay document fee: "+req.DocumentType)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "payment provider is unavailable, try again later")
		return
	}

	h.watch(req.ID)
	utils.RespondJSON(w, http.StatusOK, link)
}

// watch starts (or restarts) the settlement poll for a request. The poll
// outlives the HTTP request, so it runs on a background context.
func (h *PaymentsHandler) watch(requestID string) {
	h.mu.Lock()
	if old, ok := h.subs[requestID]; ok {
		delete(h.subs, requestID)
		h.mu.Unlock()
		old.Stop()
		h.mu.Lock()
	}
	sub := h.poller.Watch(context.Background(), requestID, func(status models.PaymentStatus) {
		h.settle(requestID, status)
	})
	h.subs[requestID] = sub
	h.mu.Unlock()
}

func (h *PaymentsHandler) settle(requestID string, status models.PaymentStatus) {
	h.mu.Lock()
	delete(h.subs, requestID)
	h.mu.Unlock()

	if status.Status != models.PaymentPaid {
		return
	}
	if _, err := h.documents.MarkPaid(context.Background(), requestID); err != nil {
		log.Printf("[payments] failed to record settlement for %s: %v", requestID, err)
	}
}

// Verify re-checks the provider once, on demand, and records payment if it
// has settled. Lets the resident refresh instead of waiting for the poll.
func (h *PaymentsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	req, err := h.documents.Get(r.Context(), requestID)
	if err != nil || req.UserID != api.GetUserID(r) {
		utils.RespondError(w, http.StatusNotFound, "request not found")
		return
	}

	status, err := h.provider.CheckStatus(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			utils.RespondError(w, http.StatusNotFound, "no payment on record for this request")
			return
		}
		utils.RespondError(w, http.StatusBadGateway, "payment provider is unavailable")
		return
	}

	if status.Status == models.PaymentPaid && req.PaymentStatus == models.PaymentUnpaid {
		if _, err := h.documents.MarkPaid(r.Context(), requestID); err != nil {
			log.Printf("[payments] failed to record verified payment for %s: %v", requestID, err)
		}
		h.stopWatch(requestID)
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

// CancelWatch stops the settlement poll for a request, e.g. when the
// resident closes the payment screen.
func (h *PaymentsHandler) CancelWatch(w http.ResponseWriter, r *http.Request) {
	h.stopWatch(mux.Vars(r)["id"])
	utils.RespondMessage(w, http.StatusOK, "watch cancelled")
}

func (h *PaymentsHandler) stopWatch(requestID string) {
	h.mu.Lock()
	sub, ok := h.subs[requestID]
	if ok {
		delete(h.subs, requestID)
	}
	h.mu.Unlock()
	if ok {
		sub.Stop()
	}
}
