// internal/models/notification.go
package models

import "time"

// Notification outcomes.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// NotificationRecord is one append-only log entry per send attempt. Attempts are
// recorded whether or not delivery succeeded; the log is an audit trail.
type NotificationRecord struct {
	ID          string    `json:"id"`
	ApplicantID string    `json:"applicantId"`
	Recipient   string    `json:"recipient"`
	Channel     string    `json:"channel"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationTemplate is a named subject/body pair rendered with submission
// context before sending.
type NotificationTemplate struct {
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	HighPriority bool   `json:"highPriority"`
}
