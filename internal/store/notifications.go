// internal/store/notifications.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"candidate-pipeline/internal/models"

	"github.com/google/uuid"
)

// NotificationStore persists the append-only notification log.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Append records one send attempt. The log is an audit trail: attempts are
// recorded for failed deliveries too.
func (s *NotificationStore) Append(ctx context.Context, r *models.NotificationRecord) error {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, applicant_id, recipient, channel, subject, body, outcome, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.ApplicantID, r.Recipient, r.Channel, r.Subject, r.Body, r.Outcome, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification record: %w", err)
	}
	return nil
}

// ListByApplicant returns the applicant's notification history, oldest first.
func (s *NotificationStore) ListByApplicant(ctx context.Context, applicantID string) ([]models.NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, applicant_id, recipient, channel, subject, body, outcome, created_at
		FROM notifications
		WHERE applicant_id = $1
		ORDER BY created_at ASC`,
		applicantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.NotificationRecord
	for rows.Next() {
		var r models.NotificationRecord
		if err := rows.Scan(&r.ID, &r.ApplicantID, &r.Recipient, &r.Channel,
			&r.Subject, &r.Body, &r.Outcome, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
