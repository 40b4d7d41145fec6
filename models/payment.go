package models

import "time"

// PaymentLink is a checkout URL issued by the external payment provider for
// a pending document fee.
type PaymentLink struct {
	RequestID   string    `json:"requestId"`
	CheckoutURL string    `json:"checkoutUrl"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentStatus is the provider's view of a payment, re-checked by the
// verify poller until it leaves the unpaid state.
type PaymentStatus struct {
	RequestID string    `json:"requestId"`
	Status    string    `json:"status"` // unpaid, paid, waived
	PaidAt    time.Time `json:"paidAt,omitempty"`
}
