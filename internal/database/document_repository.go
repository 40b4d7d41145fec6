package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"barangayportal/models"
)

// DocumentRepository persists document requests.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a document request repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new request, assigning its ID and timestamps.
func (r *DocumentRepository) Create(ctx context.Context, req *models.DocumentRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = models.PaymentUnpaid
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO document_requests
			(id, user_id, document_type, purpose, status, payment_status, fee_centavos, remarks_by, remarks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.DocumentType, req.Purpose, req.Status,
		req.PaymentStatus, req.FeeCentavos, req.RemarksBy, req.Remarks,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document request: %w", err)
	}
	return nil
}

// Get returns a request by ID, or nil when absent.
func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.DocumentRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, document_type, purpose, status, payment_status, fee_centavos, remarks_by, remarks, created_at, updated_at
		FROM document_requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document request: %w", err)
	}
	return req, nil
}

// ListForUser returns all requests for a user, newest first.
func (r *DocumentRepository) ListForUser(ctx context.Context, userID string) ([]models.DocumentRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, document_type, purpose, status, payment_status, fee_centavos, remarks_by, remarks, created_at, updated_at
		FROM document_requests WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list document requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByStatus returns all requests with the given status, oldest first, for
// the back-office review queue.
func (r *DocumentRepository) ListByStatus(ctx context.Context, status string) ([]models.DocumentRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, document_type, purpose, status, payment_status, fee_centavos, remarks_by, remarks, created_at, updated_at
		FROM document_requests WHERE status = ? ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("list document requests by status: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// SetStatus updates the review status, fee, and remarks of a request.
func (r *DocumentRepository) SetStatus(ctx context.Context, id, status string, feeCentavos int64, remarksBy, remarks string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE document_requests
		SET status = ?, fee_centavos = ?, remarks_by = ?, remarks = ?, updated_at = ?
		WHERE id = ?`,
		status, feeCentavos, remarksBy, remarks, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update document request status: %w", err)
	}
	return requireRow(res)
}

// SetPaymentStatus updates the payment status of a request.
func (r *DocumentRepository) SetPaymentStatus(ctx context.Context, id, paymentStatus string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE document_requests SET payment_status = ?, updated_at = ? WHERE id = ?`,
		paymentStatus, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update document request payment status: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.DocumentRequest, error) {
	var req models.DocumentRequest
	err := row.Scan(
		&req.ID, &req.UserID, &req.DocumentType, &req.Purpose, &req.Status,
		&req.PaymentStatus, &req.FeeCentavos, &req.RemarksBy, &req.Remarks,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]models.DocumentRequest, error) {
	var requests []models.DocumentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
