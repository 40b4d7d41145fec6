package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"barangayportal/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role code")
	ErrCannotDeleteAdmin  = errors.New("cannot delete the barangay captain account")
)

const (
	// DefaultCaptainUsername is the bootstrap back-office account.
	DefaultCaptainUsername = "captain"
	// DefaultCaptainPassword must be changed on first login.
	DefaultCaptainPassword = "captain"

	// TempPasswordLength is the length of admin-issued temporary passwords.
	TempPasswordLength = 12
)

// Service manages persistence of portal users.
type Service struct {
	mu    sync.RWMutex
	path  string
	users map[string]models.User
}

// NewService creates a user service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create users dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "users.json"),
		users: make(map[string]models.User),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	if err := svc.ensureCaptainAccount(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns all users, admin roles first, then by creation time.
func (s *Service) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		ai, aj := users[i].IsAdmin(), users[j].IsAdmin()
		if ai != aj {
			return ai
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users
}

// Get returns the user with the given ID if present.
func (s *Service) Get(id string) (models.User, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	return user, ok
}

// GetByUsername returns the user with the given username if present.
func (s *Service) GetByUsername(username string) (models.User, bool) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return models.User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.ToLower(u.Username) == username {
			return u, true
		}
	}
	return models.User{}, false
}

// Register creates a new resident account.
func (s *Service) Register(username, pass, firstName, lastName string) (models.User, error) {
	return s.create(username, pass, models.RoleResident, firstName, lastName)
}

// CreateWithRole creates a user with an explicit role code. Used by the
// back-office to appoint officials.
func (s *Service) CreateWithRole(username, pass, role, firstName, lastName string) (models.User, error) {
	if role != models.RoleResident && !models.IsAdminRole(role) {
		return models.User{}, ErrInvalidRole
	}
	return s.create(username, pass, role, firstName, lastName)
}

func (s *Service) create(username, pass, role, firstName, lastName string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}

	pass = strings.TrimSpace(pass)
	if pass == "" {
		return models.User{}, ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lowerUsername := strings.ToLower(username)
	for _, u := range s.users {
		if strings.ToLower(u.Username) == lowerUsername {
			return models.User{}, ErrUsernameExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[user.ID] = user

	if err := s.saveLocked(); err != nil {
		delete(s.users, user.ID)
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (s *Service) Authenticate(username, pass string) (models.User, error) {
	username = strings.TrimSpace(username)
	pass = strings.TrimSpace(pass)

	if username == "" || pass == "" {
		return models.User{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lowerUsername := strings.ToLower(username)
	var user models.User
	found := false
	for _, u := range s.users {
		if strings.ToLower(u.Username) == lowerUsername {
			user = u
			found = true
			break
		}
	}

	if !found {
		// Run a bcrypt comparison anyway to keep timing flat.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$dummy"), []byte(pass))
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(pass)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// UpdatePassword changes a user's password.
func (s *Service) UpdatePassword(id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserNotFound
	}

	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	return s.saveLocked()
}

// ResetPassword issues a generated temporary password for a user and returns
// it in plain text exactly once, for the back-office to hand to the resident.
func (s *Service) ResetPassword(id string) (string, error) {
	temp, err := password.Generate(TempPasswordLength, 3, 0, false, false)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	if err := s.UpdatePassword(id, temp); err != nil {
		return "", err
	}
	return temp, nil
}

// UpdateProfile records PSA profile progress for a resident.
func (s *Service) UpdateProfile(id string, complete bool, deadline *time.Time, daysLeft *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	user.ProfileComplete = complete
	user.PSADeadline = deadline
	user.PSADaysLeft = daysLeft
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	return s.saveLocked()
}

// SetVerificationStatus records the outcome of a PSA document review.
func (s *Service) SetVerificationStatus(id, status, rejectionReason string) error {
	switch status {
	case models.VerificationNone, models.VerificationPending,
		models.VerificationApproved, models.VerificationRejected:
	default:
		return fmt.Errorf("unknown verification status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	user.VerificationStatus = status
	user.RejectionReason = rejectionReason
	if status == models.VerificationApproved {
		user.ProfileComplete = true
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	return s.saveLocked()
}

// Delete removes a user by ID. The captain account cannot be deleted.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	if user.Role == models.RoleCaptain {
		return ErrCannotDeleteAdmin
	}

	delete(s.users, id)

	return s.saveLocked()
}

// HasDefaultPassword checks whether the captain account still has the
// bootstrap password.
func (s *Service) HasDefaultPassword() bool {
	captain, ok := s.GetByUsername(DefaultCaptainUsername)
	if !ok {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(captain.PasswordHash), []byte(DefaultCaptainPassword))
	return err == nil
}

// ensureCaptainAccount creates the bootstrap captain account if no admin
// account exists yet.
func (s *Service) ensureCaptainAccount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.IsAdmin() {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultCaptainPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	now := time.Now().UTC()
	captain := models.User{
		ID:           "captain",
		Username:     DefaultCaptainUsername,
		PasswordHash: string(hash),
		Role:         models.RoleCaptain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[captain.ID] = captain

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open users file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.UserStorage
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode users: %w", err)
	}

	s.users = make(map[string]models.User, len(stored))
	for _, us := range stored {
		if strings.TrimSpace(us.ID) == "" {
			continue
		}
		user := us.ToUser()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		if user.UpdatedAt.IsZero() {
			user.UpdatedAt = user.CreatedAt
		}
		s.users[user.ID] = user
	}

	return nil
}

func (s *Service) saveLocked() error {
	storage := make([]models.UserStorage, 0, len(s.users))
	for _, user := range s.users {
		storage = append(storage, user.ToStorage())
	}

	sort.Slice(storage, func(i, j int) bool {
		ai, aj := models.IsAdminRole(storage[i].Role), models.IsAdminRole(storage[j].Role)
		if ai != aj {
			return ai
		}
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create users temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode users: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync users: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close users temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}

	return nil
}
