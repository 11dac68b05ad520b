// internal/store/assessments.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"candidate-pipeline/internal/models"

	"github.com/google/uuid"
)

// AssessmentStore persists assessments in postgres. An assessment row is
// written by exactly two operations: CreatePending at dispatch time and one
// Finalize call from the scoring task. Finalize only touches rows still in
// pending, so late or duplicate finalizations are no-ops.
type AssessmentStore struct {
	db *sql.DB
}

func NewAssessmentStore(db *sql.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

// CreatePending inserts a pending assessment for the applicant.
func (s *AssessmentStore) CreatePending(ctx context.Context, applicantID string) (*models.Assessment, error) {
	a := &models.Assessment{
		ID:          uuid.New().String(),
		ApplicantID: applicantID,
		Status:      models.AssessmentStatusPending,
		Insights:    []string{},
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, applicant_id, overall, skills, experience, education,
			insights, status, created_at, updated_at
		) VALUES ($1, $2, 0, 0, 0, 0, $3, $4, $5, $5)`,
		a.ID, a.ApplicantID, "[]", a.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return a, nil
}

// CreateTerminal inserts an assessment directly in a terminal state. Used when
// scoring is skipped entirely (insufficient resume text).
func (s *AssessmentStore) CreateTerminal(ctx context.Context, applicantID, status string, insights []string) (*models.Assessment, error) {
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return nil, fmt.Errorf("marshal insights: %w", err)
	}

	a := &models.Assessment{
		ID:          uuid.New().String(),
		ApplicantID: applicantID,
		Status:      status,
		Insights:    insights,
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, applicant_id, overall, skills, experience, education,
			insights, status, created_at, updated_at
		) VALUES ($1, $2, 0, 0, 0, 0, $3, $4, $5, $5)`,
		a.ID, a.ApplicantID, insightsJSON, a.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return a, nil
}

// Finalize transitions a pending assessment to its terminal state with scores
// and insights. Returns false when no pending row was updated — either the
// applicant was deleted or the assessment was already finalized; callers treat
// that as a no-op, not an error.
func (s *AssessmentStore) Finalize(ctx context.Context, assessmentID, status string, overall, skills, experience, education int, insights []string) (bool, error) {
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return false, fmt.Errorf("marshal insights: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments
		SET overall = $2, skills = $3, experience = $4, education = $5,
			insights = $6, status = $7, updated_at = $8
		WHERE id = $1 AND status = 'pending'`,
		assessmentID, overall, skills, experience, education,
		insightsJSON, status, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("finalize assessment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByApplicant returns the assessment for an applicant, or nil when none was
// warranted.
func (s *AssessmentStore) GetByApplicant(ctx context.Context, applicantID string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, applicant_id, overall, skills, experience, education,
			insights, status, created_at, updated_at
		FROM assessments
		WHERE applicant_id = $1`,
		applicantID,
	)

	var a models.Assessment
	var insightsJSON []byte
	err := row.Scan(&a.ID, &a.ApplicantID, &a.Overall, &a.Skills, &a.Experience,
		&a.Education, &insightsJSON, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	if err := json.Unmarshal(insightsJSON, &a.Insights); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return &a, nil
}

// ListPendingOlderThan returns assessments stuck in pending longer than maxAge,
// together with their applicants' resume text and role. The recovery sweep uses
// this to re-enqueue scoring work lost to a crash.
func (s *AssessmentStore) ListPendingOlderThan(ctx context.Context, maxAge time.Duration) ([]PendingAssessment, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.applicant_id, ap.role_id, ap.resume_text
		FROM assessments a
		JOIN applicants ap ON ap.id = a.applicant_id
		WHERE a.status = 'pending' AND a.created_at < $1
		ORDER BY a.created_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending assessments: %w", err)
	}
	defer rows.Close()

	var out []PendingAssessment
	for rows.Next() {
		var p PendingAssessment
		if err := rows.Scan(&p.AssessmentID, &p.ApplicantID, &p.RoleID, &p.ResumeText); err != nil {
			return nil, fmt.Errorf("scan pending assessment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PendingAssessment is one stuck assessment found by the recovery sweep.
type PendingAssessment struct {
	AssessmentID string
	ApplicantID  string
	RoleID       string
	ResumeText   *string
}
