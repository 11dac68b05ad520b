// internal/models/role.go
package models

import "time"

// RoleProfile is the target role an applicant applies against. RequiredSkills
// drives both the scoring prompt and the evaluation skill matching.
type RoleProfile struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"requiredSkills"`
	CreatedAt      time.Time `json:"createdAt"`
}
