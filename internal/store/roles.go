// internal/store/roles.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"candidate-pipeline/internal/models"
)

// RoleStore reads role profiles from postgres. Roles are reference data owned
// by the staff screens; the pipeline only reads them.
type RoleStore struct {
	db *sql.DB
}

func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

// Get returns the role profile by id, or nil when absent.
func (s *RoleStore) Get(ctx context.Context, id string) (*models.RoleProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, required_skills, created_at
		FROM roles
		WHERE id = $1`,
		id,
	)

	var r models.RoleProfile
	var skillsJSON []byte
	err := row.Scan(&r.ID, &r.Title, &r.Description, &skillsJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan role: %w", err)
	}
	if err := json.Unmarshal(skillsJSON, &r.RequiredSkills); err != nil {
		return nil, fmt.Errorf("unmarshal required skills: %w", err)
	}
	return &r, nil
}

// Exists reports whether a role with the given id exists.
func (s *RoleStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("role exists check: %w", err)
	}
	return exists, nil
}

// Create inserts a role profile. Used by staff tooling and tests.
func (s *RoleStore) Create(ctx context.Context, r *models.RoleProfile) error {
	skillsJSON, err := json.Marshal(r.RequiredSkills)
	if err != nil {
		return fmt.Errorf("marshal required skills: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roles (id, title, description, required_skills, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Title, r.Description, skillsJSON, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}
