package payments

import (
	"context"
	"log"
	"sync"
	"time"

	"barangayportal/models"
)

// DefaultPollInterval is how often a watched payment is re-checked.
const DefaultPollInterval = 5 * time.Second

// StatusChecker is the provider surface the poller needs.
type StatusChecker interface {
	CheckStatus(ctx context.Context, requestID string) (*models.PaymentStatus, error)
}

// Subscription is a handle on one watched payment. Stop cancels the watch;
// it is safe to call more than once.
type Subscription struct {
	requestID string
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
}

// Stop cancels the subscription and waits for the poll loop to exit.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Poller re-checks payment status on a fixed interval until the payment
// leaves the unpaid state or the subscription is stopped. Check failures are
// logged and the next tick proceeds on schedule; the interval never grows.
type Poller struct {
	checker  StatusChecker
	interval time.Duration
}

func NewPoller(checker StatusChecker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{checker: checker, interval: interval}
}

// Watch starts polling the given request. onSettled runs exactly once, from
// the poll goroutine, when the provider reports a status other than unpaid.
// It does not run if the subscription is stopped first.
func (p *Poller) Watch(ctx context.Context, requestID string, onSettled func(models.PaymentStatus)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		requestID: requestID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go p.run(ctx, requestID, onSettled, sub.done)
	return sub
}

func (p *Poller) run(ctx context.Context, requestID string, onSettled func(models.PaymentStatus), done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.checker.CheckStatus(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[payments] status check for %s failed: %v", requestID, err)
			continue
		}
		if status.Status != models.PaymentUnpaid {
			log.Printf("[payments] request %s settled as %s", requestID, status.Status)
			onSettled(*status)
			return
		}
	}
}
