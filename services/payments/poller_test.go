package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"barangayportal/models"
)

// scriptedChecker returns canned statuses in order, then repeats the last one.
type scriptedChecker struct {
	mu       sync.Mutex
	statuses []string
	errs     []error
	calls    int
	callTime []time.Time
}

func (c *scriptedChecker) CheckStatus(ctx context.Context, requestID string) (*models.PaymentStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	c.callTime = append(c.callTime, time.Now())
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	status := c.statuses[len(c.statuses)-1]
	if i < len(c.statuses) {
		status = c.statuses[i]
	}
	return &models.PaymentStatus{RequestID: requestID, Status: status}, nil
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestWatch_StopsWhenPaid(t *testing.T) {
	checker := &scriptedChecker{statuses: []string{"unpaid", "unpaid", "paid"}}
	poller := NewPoller(checker, 10*time.Millisecond)

	settled := make(chan models.PaymentStatus, 1)
	sub := poller.Watch(context.Background(), "req-1", func(s models.PaymentStatus) {
		settled <- s
	})
	defer sub.Stop()

	select {
	case s := <-settled:
		if s.Status != "paid" {
			t.Errorf("expected paid, got %q", s.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("poller never settled")
	}

	// The loop is done; further time must not produce more checks.
	count := checker.callCount()
	time.Sleep(50 * time.Millisecond)
	if after := checker.callCount(); after != count {
		t.Errorf("poller kept checking after settling: %d -> %d", count, after)
	}
}

func TestWatch_FixedIntervalSurvivesErrors(t *testing.T) {
	checker := &scriptedChecker{
		statuses: []string{"unpaid", "unpaid", "unpaid", "paid"},
		errs:     []error{nil, errors.New("provider down"), nil, nil},
	}
	poller := NewPoller(checker, 20*time.Millisecond)

	settled := make(chan models.PaymentStatus, 1)
	sub := poller.Watch(context.Background(), "req-1", func(s models.PaymentStatus) {
		settled <- s
	})
	defer sub.Stop()

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never settled despite recovering from error")
	}

	// Ticks stay evenly spaced: an error must not stretch the gap to the
	// next check beyond roughly one interval.
	checker.mu.Lock()
	defer checker.mu.Unlock()
	for i := 1; i < len(checker.callTime); i++ {
		gap := checker.callTime[i].Sub(checker.callTime[i-1])
		if gap > 100*time.Millisecond {
			t.Errorf("gap between checks %d and %d was %v, interval should not back off", i-1, i, gap)
		}
	}
}

func TestSubscriptionStop(t *testing.T) {
	checker := &scriptedChecker{statuses: []string{"unpaid"}}
	poller := NewPoller(checker, 10*time.Millisecond)

	var settledOnce sync.Once
	settledCount := 0
	sub := poller.Watch(context.Background(), "req-1", func(models.PaymentStatus) {
		settledOnce.Do(func() { settledCount++ })
	})

	time.Sleep(35 * time.Millisecond)
	sub.Stop()
	count := checker.callCount()

	time.Sleep(50 * time.Millisecond)
	if after := checker.callCount(); after != count {
		t.Errorf("checks continued after Stop: %d -> %d", count, after)
	}
	if settledCount != 0 {
		t.Error("onSettled must not run for a stopped unpaid watch")
	}

	// Stop is idempotent.
	sub.Stop()
}

func TestWatch_DefaultInterval(t *testing.T) {
	p := NewPoller(&scriptedChecker{statuses: []string{"unpaid"}}, 0)
	if p.interval != DefaultPollInterval {
		t.Errorf("expected default interval %v, got %v", DefaultPollInterval, p.interval)
	}
}
