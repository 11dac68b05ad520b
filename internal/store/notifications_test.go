// internal/store/notifications_test.go
package store

import (
	"context"
	"testing"
	"time"

	"candidate-pipeline/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "app-1", "alice@x.com", "email",
			"Application received", "Hi Alice", "sent", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewNotificationStore(db)
	err = s.Append(context.Background(), &models.NotificationRecord{
		ApplicantID: "app-1",
		Recipient:   "alice@x.com",
		Channel:     models.ChannelEmail,
		Subject:     "Application received",
		Body:        "Hi Alice",
		Outcome:     models.NotificationSent,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationStore_ListByApplicant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "applicant_id", "recipient", "channel", "subject", "body", "outcome", "created_at",
	}).
		AddRow("n-1", "app-1", "alice@x.com", "email", "Application received", "Hi", "sent", now.Add(-time.Minute)).
		AddRow("n-2", "app-1", "+15551234567", "sms", "Application received", "Hi", "failed", now)

	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs("app-1").
		WillReturnRows(rows)

	s := NewNotificationStore(db)
	records, err := s.ListByApplicant(context.Background(), "app-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.ChannelEmail, records[0].Channel)
	assert.Equal(t, models.NotificationFailed, records[1].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationStore_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs("app-unknown").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "applicant_id", "recipient", "channel", "subject", "body", "outcome", "created_at",
		}))

	s := NewNotificationStore(db)
	records, err := s.ListByApplicant(context.Background(), "app-unknown")

	require.NoError(t, err)
	assert.Empty(t, records)
}
