package notifications

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"barangayportal/models"
)

var (
	ErrNoQueue           = errors.New("no notification queue for user")
	ErrNotificationNotFound = errors.New("notification not found")
)

// DefaultWarningDelay is the transition pause between dismissing the
// approved-document alert and showing the deferred profile warning.
const DefaultWarningDelay = 300 * time.Millisecond

// DocumentSource supplies a user's document requests.
type DocumentSource interface {
	ListForUser(ctx context.Context, userID string) ([]models.DocumentRequest, error)
}

// ProfileSource supplies the freshly loaded user profile.
type ProfileSource interface {
	Get(id string) (models.User, bool)
}

// Store is the persistence boundary for tray notifications.
type Store interface {
	RecentForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
	Insert(ctx context.Context, n models.Notification) error
}

// Service is the notification queue coordinator. It decides which post-login
// notices a user sees and in what order: an approved-document alert always
// precedes the profile-completion warning, and the warning is held back until
// the alert is explicitly dismissed.
type Service struct {
	docs     DocumentSource
	profiles ProfileSource
	store    Store

	mu     sync.Mutex
	queues map[string]*Queue
	timers map[string]*time.Timer

	warningDelay time.Duration
}

// NewService creates a coordinator. A zero warningDelay falls back to the
// default 300ms transition pause.
func NewService(docs DocumentSource, profiles ProfileSource, store Store, warningDelay time.Duration) *Service {
	if warningDelay <= 0 {
		warningDelay = DefaultWarningDelay
	}
	return &Service{
		docs:         docs,
		profiles:     profiles,
		store:        store,
		queues:       make(map[string]*Queue),
		timers:       make(map[string]*time.Timer),
		warningDelay: warningDelay,
	}
}

// PrepareForLogin computes the post-login queue for a user. The document and
// profile fetches run concurrently; display ordering is enforced by the state
// machine, never by which fetch finishes first. Fetch failures degrade to "no
// alert" and are logged, not surfaced.
func (s *Service) PrepareForLogin(ctx context.Context, userID string) Queue {
	var (
		requests []models.DocumentRequest
		user     models.User
		userOK   bool
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		reqs, err := s.docs.ListForUser(ctx, userID)
		if err != nil {
			log.Printf("[notifications] document fetch for %s failed: %v", userID, err)
			return
		}
		requests = reqs
	})
	wg.Go(func() {
		user, userOK = s.profiles.Get(userID)
	})
	wg.Wait()

	q := &Queue{Alert: BuildAlert(requests)}
	if userOK {
		q.Warning = EvaluateWarning(user)
	}
	// A fresh login always starts from idle.
	_ = q.apply(eventLoginChecked)

	s.mu.Lock()
	s.cancelTimerLocked(userID)
	s.queues[userID] = q
	snapshot := *q
	s.mu.Unlock()

	return snapshot
}

// Current returns the user's queue as last computed.
func (s *Service) Current(userID string) (Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[userID]
	if !ok {
		return Queue{}, ErrNoQueue
	}
	return *q, nil
}

// DismissAlert signals that the approved-document alert was dismissed. If a
// warning is deferred behind it, the warning surfaces after the transition
// delay; otherwise the queue is done.
func (s *Service) DismissAlert(userID string) (Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[userID]
	if !ok {
		return Queue{}, ErrNoQueue
	}
	if err := q.apply(eventAlertDismissed); err != nil {
		return Queue{}, err
	}

	if q.State == StateWarningPending {
		s.cancelTimerLocked(userID)
		s.timers[userID] = time.AfterFunc(s.warningDelay, func() {
			s.surfaceWarning(userID)
		})
	}
	return *q, nil
}

// DismissWarning signals that the profile-completion warning was dismissed.
func (s *Service) DismissWarning(userID string) (Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[userID]
	if !ok {
		return Queue{}, ErrNoQueue
	}
	if err := q.apply(eventWarningDismissed); err != nil {
		return Queue{}, err
	}
	return *q, nil
}

// Clear drops all queued, pending, and shown notification state for a user.
// Called unconditionally on logout and idle expiry.
func (s *Service) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked(userID)
	delete(s.queues, userID)
}

// Recent returns up to limit tray notifications for the user, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.RecentForUser(ctx, userID, limit)
}

// MarkRead flags a single tray notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	ok, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// Notify inserts a tray notification for a user. Failures are logged and
// swallowed; tray delivery is best effort.
func (s *Service) Notify(ctx context.Context, userID, title, msg string) {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: msg,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		log.Printf("[notifications] insert for %s failed: %v", userID, err)
	}
}

// surfaceWarning completes the deferred alert-to-warning handoff once the
// transition delay has elapsed.
func (s *Service) surfaceWarning(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[userID]
	if !ok {
		// Cleared (logout/expiry) while the delay was pending.
		return
	}
	if err := q.apply(eventWarningDelayElapsed); err != nil {
		return
	}
	delete(s.timers, userID)
}

// cancelTimerLocked stops any pending warning-show timer. Must be called with
// mu held.
func (s *Service) cancelTimerLocked(userID string) {
	if t, ok := s.timers[userID]; ok {
		t.Stop()
		delete(s.timers, userID)
	}
}

// alertMessage renders the approved-document alert copy, including the total
// outstanding fee in pesos.
func alertMessage(requests []models.DocumentRequest) string {
	var total int64
	for _, req := range requests {
		total += req.FeeCentavos
	}
	p := message.NewPrinter(language.English)
	if len(requests) == 1 {
		return p.Sprintf("Your %s has been approved. A fee of ₱%.2f is due before release.",
			requests[0].DocumentType, float64(total)/100)
	}
	return p.Sprintf("%d of your document requests have been approved. Fees totalling ₱%.2f are due before release.",
		len(requests), float64(total)/100)
}
