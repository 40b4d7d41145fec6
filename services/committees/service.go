package committees

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"barangayportal/models"
)

var (
	// ErrCommitteeNotFound is returned when no committee matches the ID.
	ErrCommitteeNotFound = errors.New("committee not found")

	// ErrNameRequired is returned when a committee has no name.
	ErrNameRequired = errors.New("committee name is required")
)

// Repository is implemented by database.CommitteeRepository.
type Repository interface {
	Insert(ctx context.Context, c *models.Committee) error
	Update(ctx context.Context, c *models.Committee) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Committee, error)
	List(ctx context.Context) ([]models.Committee, error)
}

// Service manages the barangay committee directory.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a committee to the directory.
func (s *Service) Create(ctx context.Context, name, description, chairperson string, members []models.CommitteeMember) (*models.Committee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	c := &models.Committee{
		Name:        name,
		Description: description,
		Chairperson: chairperson,
		Members:     members,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save committee: %w", err)
	}
	log.Printf("[committees] created %q", name)
	return c, nil
}

// Get returns a single committee.
func (s *Service) Get(ctx context.Context, id string) (*models.Committee, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCommitteeNotFound
	}
	return c, nil
}

// List returns all committees.
func (s *Service) List(ctx context.Context) ([]models.Committee, error) {
	return s.repo.List(ctx)
}

// Update replaces a committee's details and membership.
func (s *Service) Update(ctx context.Context, id, name, description, chairperson string, members []models.CommitteeMember) (*models.Committee, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(name); n != "" {
		c.Name = n
	}
	c.Description = description
	c.Chairperson = chairperson
	c.Members = members
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update committee: %w", err)
	}
	return c, nil
}

// Delete removes a committee from the directory.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete committee: %w", err)
	}
	return nil
}
