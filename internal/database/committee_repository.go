package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"barangayportal/models"
)

// CommitteeRepository persists the committee directory.
type CommitteeRepository struct {
	db *sql.DB
}

// NewCommitteeRepository creates a committee repository.
func NewCommitteeRepository(db *sql.DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

// Insert stores a new committee.
func (r *CommitteeRepository) Insert(ctx context.Context, c *models.Committee) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	members, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("encode committee members: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO committees (id, name, description, chairperson, members_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Chairperson, string(members), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert committee: %w", err)
	}
	return nil
}

// Update rewrites a committee entry.
func (r *CommitteeRepository) Update(ctx context.Context, c *models.Committee) error {
	c.UpdatedAt = time.Now().UTC()

	members, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("encode committee members: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE committees SET name = ?, description = ?, chairperson = ?, members_json = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Description, c.Chairperson, string(members), c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update committee: %w", err)
	}
	return requireRow(res)
}

// Delete removes a committee by ID.
func (r *CommitteeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM committees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete committee: %w", err)
	}
	return requireRow(res)
}

// Get returns a committee by ID, or nil when absent.
func (r *CommitteeRepository) Get(ctx context.Context, id string) (*models.Committee, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, chairperson, members_json, created_at, updated_at
		FROM committees WHERE id = ?`, id)

	c, err := scanCommittee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get committee: %w", err)
	}
	return c, nil
}

// List returns every committee ordered by name.
func (r *CommitteeRepository) List(ctx context.Context) ([]models.Committee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, chairperson, members_json, created_at, updated_at
		FROM committees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	defer rows.Close()

	var committees []models.Committee
	for rows.Next() {
		c, err := scanCommittee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan committee: %w", err)
		}
		committees = append(committees, *c)
	}
	return committees, rows.Err()
}

func scanCommittee(row rowScanner) (*models.Committee, error) {
	var c models.Committee
	var members string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Chairperson, &members, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(members), &c.Members); err != nil {
		return nil, fmt.Errorf("decode committee members: %w", err)
	}
	return &c, nil
}
