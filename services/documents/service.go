package documents

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"barangayportal/models"
)

var (
	// ErrRequestNotFound is returned when a document request cannot be located.
	ErrRequestNotFound = errors.New("document request not found")

	// ErrInvalidDocumentType is returned when the requested document type is
	// not one the barangay issues.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrInvalidStatus is returned on an attempt to move a request into a
	// status the workflow does not allow.
	ErrInvalidStatus = errors.New("invalid status transition")
)

// Repository is the persistence surface the service needs. Implemented by
// database.DocumentRepository.
type Repository interface {
	Create(ctx context.Context, req *models.DocumentRequest) error
	Get(ctx context.Context, id string) (*models.DocumentRequest, error)
	ListForUser(ctx context.Context, userID string) ([]models.DocumentRequest, error)
	ListByStatus(ctx context.Context, status string) ([]models.DocumentRequest, error)
	SetStatus(ctx context.Context, id, status string, feeCentavos int64, remarksBy, remarks string) error
	SetPaymentStatus(ctx context.Context, id, paymentStatus string) error
}

// Notifier posts a tray notification for a user. Failures are the notifier's
// problem; callers treat it as best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID, title, msg string)
}

// Service manages the document request workflow from submission through
// approval, payment, and release.
type Service struct {
	repo     Repository
	notifier Notifier
	printer  *message.Printer
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		printer:  message.NewPrinter(language.English),
	}
}

var validTypes = map[string]bool{
	models.DocBarangayClearance: true,
	models.DocCertResidency:     true,
	models.DocCertIndigency:     true,
	models.DocBusinessPermit:    true,
}

// Submit files a new request for the given user. New requests start pending
// and unpaid.
func (s *Service) Submit(ctx context.Context, userID, documentType, purpose string) (*models.DocumentRequest, error) {
	if !validTypes[documentType] {
		return nil, ErrInvalidDocumentType
	}
	req := &models.DocumentRequest{
		UserID:       userID,
		DocumentType: documentType,
		Purpose:      purpose,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	log.Printf("[documents] request %s submitted by %s (%s)", req.ID, userID, documentType)
	return req, nil
}

// Get returns a single request.
func (s *Service) Get(ctx context.Context, id string) (*models.DocumentRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ListForUser returns all requests filed by a user, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.DocumentRequest, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ListPending returns requests awaiting official review.
func (s *Service) ListPending(ctx context.Context) ([]models.DocumentRequest, error) {
	return s.repo.ListByStatus(ctx, models.RequestPending)
}

// Approve marks a pending request as approved with the assessed fee and
// notifies the requester. A zero fee means the document is free of charge.
func (s *Service) Approve(ctx context.Context, id string, feeCentavos int64, approvedBy string) (*models.DocumentRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.SetStatus(ctx, id, models.RequestApproved, feeCentavos, approvedBy, ""); err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}
	if feeCentavos == 0 {
		if err := s.repo.SetPaymentStatus(ctx, id, models.PaymentWaived); err != nil {
			return nil, fmt.Errorf("failed to waive fee: %w", err)
		}
	}

	msg := fmt.Sprintf("Your %s request has been approved.", req.DocumentType)
	if feeCentavos > 0 {
		msg = s.printer.Sprintf("Your %s request has been approved. Fee: ₱%.2f.",
			req.DocumentType, float64(feeCentavos)/100)
	}
	s.notifier.Notify(ctx, req.UserID, "Document approved", msg)

	return s.Get(ctx, id)
}

// Reject declines a pending request with remarks explaining why.
func (s *Service) Reject(ctx context.Context, id, rejectedBy, remarks string) (*models.DocumentRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.SetStatus(ctx, id, models.RequestRejected, 0, rejectedBy, remarks); err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	s.notifier.Notify(ctx, req.UserID, "Document request rejected", remarks)
	return s.Get(ctx, id)
}

// MarkPaid records payment against an approved request.
func (s *Service) MarkPaid(ctx context.Context, id string) (*models.DocumentRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestApproved || req.PaymentStatus != models.PaymentUnpaid {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.SetPaymentStatus(ctx, id, models.PaymentPaid); err != nil {
		return nil, fmt.Errorf("failed to mark request paid: %w", err)
	}
	log.Printf("[documents] request %s marked paid", id)
	return s.Get(ctx, id)
}

// Release hands the finished document over. Requires an approved request
// that is paid or waived.
func (s *Service) Release(ctx context.Context, id, releasedBy string) (*models.DocumentRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestApproved || req.PaymentStatus == models.PaymentUnpaid {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.SetStatus(ctx, id, models.RequestReleased, req.FeeCentavos, releasedBy, req.Remarks); err != nil {
		return nil, fmt.Errorf("failed to release request: %w", err)
	}
	s.notifier.Notify(ctx, req.UserID, "Document released",
		fmt.Sprintf("Your %s is ready for pickup at the barangay hall.", req.DocumentType))
	return s.Get(ctx, id)
}
