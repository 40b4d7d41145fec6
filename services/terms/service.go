package terms

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"barangayportal/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")

	// ErrSignatureRequired is returned when acceptance is attempted without
	// a captured signature.
	ErrSignatureRequired = errors.New("signature is required")

	// ErrTermsNotRead is returned when the user has not scrolled through the
	// full terms text before accepting.
	ErrTermsNotRead = errors.New("terms must be read to the end before accepting")
)

// Service records terms-of-service acceptances. Acceptance requires both a
// captured signature and confirmation that the user scrolled the terms to
// the bottom; neither alone is enough.
type Service struct {
	mu          sync.RWMutex
	path        string
	acceptances map[string]models.TermsAcceptance
}

// NewService creates a terms service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create terms dir: %w", err)
	}

	svc := &Service{
		path:        filepath.Join(storageDir, "terms.json"),
		acceptances: make(map[string]models.TermsAcceptance),
	}
	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Accepted reports whether the user has accepted the current terms.
func (s *Service) Accepted(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.acceptances[userID]
	return ok
}

// Acceptance returns the stored record for a user, or nil.
func (s *Service) Acceptance(userID string) *models.TermsAcceptance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.acceptances[userID]; ok {
		return &a
	}
	return nil
}

// Accept records the user's acceptance. signature is the captured drawing as
// a base64 data blob; scrolledToBottom must be true.
func (s *Service) Accept(userID, signature, userAgent string, scrolledToBottom bool) (*models.TermsAcceptance, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, ErrSignatureRequired
	}
	if !scrolledToBottom {
		return nil, ErrTermsNotRead
	}

	acceptance := models.TermsAcceptance{
		UserID:     userID,
		Signature:  signature,
		UserAgent:  userAgent,
		AcceptedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptances[userID] = acceptance
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return &acceptance, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open terms file: %w", err)
	}
	defer file.Close()

	var stored []models.TermsAcceptance
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode terms: %w", err)
	}

	s.acceptances = make(map[string]models.TermsAcceptance, len(stored))
	for _, a := range stored {
		if strings.TrimSpace(a.UserID) == "" {
			continue
		}
		s.acceptances[a.UserID] = a
	}
	return nil
}

func (s *Service) saveLocked() error {
	stored := make([]models.TermsAcceptance, 0, len(s.acceptances))
	for _, a := range s.acceptances {
		stored = append(stored, a)
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create terms temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode terms: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync terms file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close terms file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace terms file: %w", err)
	}
	return nil
}
