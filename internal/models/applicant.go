// internal/models/applicant.go
package models

import "time"

// Applicant lifecycle statuses.
const (
	ApplicantStatusSubmitted    = "submitted"
	ApplicantStatusReviewed     = "reviewed"
	ApplicantStatusInterviewing = "interviewing"
	ApplicantStatusHired        = "hired"
	ApplicantStatusRejected     = "rejected"
)

// Applicant is one person's submission for one specific role.
// ResumeText is nil when extraction failed or no document was uploaded.
type Applicant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	ProfileURL string    `json:"profileUrl,omitempty"`
	RoleID     string    `json:"roleId"`
	ResumeText *string   `json:"resumeText,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ValidStatus reports whether s is a known applicant lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case ApplicantStatusSubmitted, ApplicantStatusReviewed, ApplicantStatusInterviewing,
		ApplicantStatusHired, ApplicantStatusRejected:
		return true
	}
	return false
}
