// internal/models/assessment.go
package models

import "time"

// Assessment statuses. An assessment is created pending and transitions exactly
// once to a terminal state.
const (
	AssessmentStatusPending   = "pending"
	AssessmentStatusCompleted = "completed"
	AssessmentStatusFailed    = "failed"
)

// Assessment holds the AI-derived scores for one applicant. All four scores are
// normalized to [0,100].
type Assessment struct {
	ID          string    `json:"id"`
	ApplicantID string    `json:"applicantId"`
	Overall     int       `json:"overall"`
	Skills      int       `json:"skills"`
	Experience  int       `json:"experience"`
	Education   int       `json:"education"`
	Insights    []string  `json:"insights"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
