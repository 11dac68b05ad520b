// internal/models/evaluation.go
package models

import "time"

// Evaluation result confidence levels. Low means the applicant had no completed
// assessment and the entry was produced from role matching alone.
const (
	ConfidenceNormal = "normal"
	ConfidenceLow    = "low"
)

// EvaluationResult is one entry of an evaluation run: an applicant scored and
// ranked against a single role. Rank is a 1-based dense rank assigned once at
// run time; it is never recomputed until the next full run.
type EvaluationResult struct {
	ApplicantID    string    `json:"applicantId"`
	ApplicantName  string    `json:"applicantName"`
	RoleID         string    `json:"roleId"`
	FitScore       float64   `json:"fitScore"`
	MatchingSkills []string  `json:"matchingSkills"`
	MissingSkills  []string  `json:"missingSkills"`
	Confidence     string    `json:"confidence"`
	Rank           int       `json:"rank"`
	RankedAt       time.Time `json:"rankedAt"`
}

// EvaluationRun is the full ranked result set for one role, replaced whole on
// every run.
type EvaluationRun struct {
	RoleID  string             `json:"roleId"`
	RunAt   time.Time          `json:"runAt"`
	Results []EvaluationResult `json:"results"`
}
