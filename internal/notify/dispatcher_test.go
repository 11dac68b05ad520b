// internal/notify/dispatcher_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type mockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type recordingStore struct {
	records []models.NotificationRecord
	err     error
}

func (r *recordingStore) Append(_ context.Context, rec *models.NotificationRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, *rec)
	return nil
}

func testApplicant() *models.Applicant {
	return &models.Applicant{
		ID:    "app-1",
		Name:  "Alice",
		Email: "alice@x.com",
		Phone: "+15550001111",
	}
}

func okSES() *mockSESService {
	return &mockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
}

func TestDispatcher_Dispatch_EmailSuccess(t *testing.T) {
	store := &recordingStore{}
	d := NewDispatcher(Config{EmailEnabled: true, FromEmail: "noreply@hire.example"},
		okSES(), nil, store, logger.NewNoOpLogger())

	outcome := d.Dispatch(context.Background(), testApplicant(), TemplateApplicationReceived,
		map[string]string{"name": "Alice", "roleTitle": "Backend Engineer", "applicationId": "app-1"})

	assert.Equal(t, models.NotificationSent, outcome)
	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, models.ChannelEmail, rec.Channel)
	assert.Equal(t, models.NotificationSent, rec.Outcome)
	assert.Contains(t, rec.Subject, "Backend Engineer")
	assert.Contains(t, rec.Body, "Alice")

	// Every placeholder the template references must have been rendered.
	assert.NotContains(t, rec.Subject, "{{")
	assert.NotContains(t, rec.Body, "{{")
}

func TestDispatcher_Dispatch_RecordsFailedAttempt(t *testing.T) {
	failingSES := &mockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses unavailable")
		},
	}

	store := &recordingStore{}
	d := NewDispatcher(Config{EmailEnabled: true, FromEmail: "noreply@hire.example"},
		failingSES, nil, store, logger.NewNoOpLogger())

	outcome := d.Dispatch(context.Background(), testApplicant(), TemplateApplicationReceived, nil)

	// Delivery failed but the attempt is still in the audit log.
	assert.Equal(t, models.NotificationFailed, outcome)
	require.Len(t, store.records, 1)
	assert.Equal(t, models.NotificationFailed, store.records[0].Outcome)
}

func TestDispatcher_Dispatch_UnknownTemplate(t *testing.T) {
	store := &recordingStore{}
	d := NewDispatcher(Config{EmailEnabled: true}, okSES(), nil, store, logger.NewNoOpLogger())

	outcome := d.Dispatch(context.Background(), testApplicant(), "no-such-template", nil)
	assert.Equal(t, models.NotificationFailed, outcome)
	assert.Empty(t, store.records)
}

func TestDispatcher_Dispatch_RecorderFailureDoesNotPanic(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	d := NewDispatcher(Config{EmailEnabled: true, FromEmail: "noreply@hire.example"},
		okSES(), nil, store, logger.NewNoOpLogger())

	outcome := d.Dispatch(context.Background(), testApplicant(), TemplateApplicationReceived, nil)
	assert.Equal(t, models.NotificationSent, outcome)
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Hi {{name}}, ref {{id}}", map[string]string{"name": "Bob", "id": "7"})
	assert.Equal(t, "Hi Bob, ref 7", out)

	// Unknown placeholders are left in place.
	out = renderTemplate("Hi {{name}}", nil)
	assert.Equal(t, "Hi {{name}}", out)
}
