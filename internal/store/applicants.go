// internal/store/applicants.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"candidate-pipeline/internal/models"

	"github.com/google/uuid"
)

// ApplicantStore persists applicants in postgres.
type ApplicantStore struct {
	db *sql.DB
}

func NewApplicantStore(db *sql.DB) *ApplicantStore {
	return &ApplicantStore{db: db}
}

// NormalizeEmail lowercases and trims an email for duplicate matching. Identity
// equality is exact-match on this normalized form, no fuzzy matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new applicant row with status=submitted and returns it.
func (s *ApplicantStore) Create(ctx context.Context, a *models.Applicant) (*models.Applicant, error) {
	a.ID = uuid.New().String()
	a.Email = NormalizeEmail(a.Email)
	a.Status = models.ApplicantStatusSubmitted
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applicants (
			id, name, email, phone, profile_url, role_id,
			resume_text, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		a.ID, a.Name, a.Email, a.Phone, a.ProfileURL, a.RoleID,
		a.ResumeText, a.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert applicant: %w", err)
	}
	return a, nil
}

// FindByEmailAndRole returns the applicant with the given normalized email and
// role, or nil when no such applicant exists.
func (s *ApplicantStore) FindByEmailAndRole(ctx context.Context, email, roleID string) (*models.Applicant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, profile_url, role_id,
			resume_text, status, created_at, updated_at
		FROM applicants
		WHERE email = $1 AND role_id = $2`,
		NormalizeEmail(email), roleID,
	)
	return scanApplicant(row)
}

// Get returns the applicant by id, or nil when absent.
func (s *ApplicantStore) Get(ctx context.Context, id string) (*models.Applicant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, profile_url, role_id,
			resume_text, status, created_at, updated_at
		FROM applicants
		WHERE id = $1`,
		id,
	)
	return scanApplicant(row)
}

// ListByRole returns all applicants for a role ordered by submission time. When
// ids is non-empty the result is restricted to those applicants.
func (s *ApplicantStore) ListByRole(ctx context.Context, roleID string, ids []string) ([]models.Applicant, error) {
	query := `
		SELECT id, name, email, phone, profile_url, role_id,
			resume_text, status, created_at, updated_at
		FROM applicants
		WHERE role_id = $1`
	args := []interface{}{roleID}

	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, id)
		}
		query += fmt.Sprintf(" AND id IN (%s)", strings.Join(placeholders, ", "))
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	var out []models.Applicant
	for rows.Next() {
		a, err := scanApplicantRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateStatus moves an applicant through the lifecycle. Returns false when the
// applicant does not exist.
func (s *ApplicantStore) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applicants SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("update applicant status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanApplicant(row *sql.Row) (*models.Applicant, error) {
	var a models.Applicant
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ProfileURL, &a.RoleID,
		&a.ResumeText, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan applicant: %w", err)
	}
	return &a, nil
}

func scanApplicantRows(rows *sql.Rows) (*models.Applicant, error) {
	var a models.Applicant
	err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ProfileURL, &a.RoleID,
		&a.ResumeText, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan applicant: %w", err)
	}
	return &a, nil
}
