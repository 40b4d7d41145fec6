package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"barangayportal/models"
)

var (
	// ErrProviderUnavailable is returned when the payment provider cannot be
	// reached after retries.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrPaymentNotFound is returned when the provider has no record of the
	// given reference.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Provider talks to the external payment gateway over HTTP. Link creation
// retries transient failures; status checks do not, because the poller
// already re-asks on a fixed schedule.
type Provider struct {
	baseURL string
	client  *http.Client
}

func NewProvider(baseURL string) *Provider {
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type createLinkRequest struct {
	RequestID   string `json:"requestId"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description"`
}

type createLinkResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	Reference   string `json:"reference"`
}

// CreateLink asks the provider for a checkout URL covering the request's fee.
func (p *Provider) CreateLink(ctx context.Context, requestID string, amountCentavos int64, description string) (*models.PaymentLink, error) {
	body, err := json.Marshal(createLinkRequest{
		RequestID:   requestID,
		AmountCents: amountCentavos,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode link request: %w", err)
	}

	var out createLinkResponse
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				p.baseURL+"/v1/links", bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := p.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("provider returned %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
				return retry.Unrecoverable(fmt.Errorf("provider rejected link request: %d", resp.StatusCode))
			}
			return json.NewDecoder(resp.Body).Decode(&out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[payments] link creation for %s failed: %v", requestID, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return &models.PaymentLink{
		RequestID:   requestID,
		CheckoutURL: out.CheckoutURL,
		Reference:   out.Reference,
		CreatedAt:   time.Now(),
	}, nil
}

// CheckStatus asks the provider for the current state of a payment. A single
// request, no retries.
func (p *Provider) CheckStatus(ctx context.Context, requestID string) (*models.PaymentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/v1/payments/"+requestID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("provider status check returned %d", resp.StatusCode)
	}

	var status models.PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	status.RequestID = requestID
	return &status, nil
}
