package models

import "time"

// Document request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
	RequestReleased = "released"
)

// Payment statuses for a document request fee.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentWaived = "waived"
)

// Well-known barangay document types.
const (
	DocBarangayClearance = "barangay-clearance"
	DocCertResidency     = "certificate-of-residency"
	DocCertIndigency     = "certificate-of-indigency"
	DocBusinessPermit    = "business-permit"
)

// DocumentRequest is a resident's request for an official barangay document.
// Fees are stored in centavos to avoid floating-point money.
type DocumentRequest struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	DocumentType  string    `json:"documentType"`
	Purpose       string    `json:"purpose,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	FeeCentavos   int64     `json:"fee"`
	RemarksBy     string    `json:"remarksBy,omitempty"`
	Remarks       string    `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsApprovedUnpaid reports whether the request is approved, still unpaid, and
// carries a non-zero fee. These are the requests surfaced as a post-login
// alert.
func (d DocumentRequest) IsApprovedUnpaid() bool {
	return d.Status == RequestApproved && d.PaymentStatus == PaymentUnpaid && d.FeeCentavos > 0
}
