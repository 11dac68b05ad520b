// internal/notify/dispatcher.go

// Package notify sends transactional messages to applicants and records every
// attempt in the notification log.
package notify

import (
	"context"
	"fmt"
	"strings"

	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Template names.
const (
	TemplateApplicationReceived = "application_received"
)

// SESService is the SES subset used by the dispatcher, defined for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the SNS subset used by the dispatcher.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Recorder appends one entry to the notification audit log.
type Recorder interface {
	Append(ctx context.Context, r *models.NotificationRecord) error
}

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
}

// Dispatcher sends notifications over SES/SNS. Delivery failure never
// propagates: the outcome is recorded and the error stays local.
type Dispatcher struct {
	config    Config
	sesClient SESService
	snsClient SNSService
	recorder  Recorder
	logger    logger.Logger
	templates map[string]models.NotificationTemplate
}

func NewDispatcher(config Config, sesClient SESService, snsClient SNSService, recorder Recorder, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		recorder:  recorder,
		logger:    log.WithFields(map[string]interface{}{"component": "notification-dispatcher"}),
		templates: defaultTemplates(),
	}
}

// Dispatch renders the named template and attempts delivery to the applicant.
// An attempt record is appended per channel whether or not delivery succeeded.
// The returned outcome is models.NotificationSent only when every attempted
// channel succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, applicant *models.Applicant, templateName string, data map[string]string) string {
	tmpl, ok := d.templates[templateName]
	if !ok {
		d.logger.Error("unknown notification template", map[string]interface{}{
			"template": templateName,
		})
		return models.NotificationFailed
	}

	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	outcome := models.NotificationSent

	if d.config.EmailEnabled && applicant.Email != "" {
		emailOutcome := models.NotificationSent
		if err := d.sendEmail(ctx, applicant.Email, subject, body); err != nil {
			d.logger.Error("email send failed", map[string]interface{}{
				"applicantId": applicant.ID,
				"error":       err.Error(),
			})
			emailOutcome = models.NotificationFailed
			outcome = models.NotificationFailed
		}
		d.record(ctx, applicant, applicant.Email, models.ChannelEmail, subject, body, emailOutcome)
	}

	if d.config.SMSEnabled && applicant.Phone != "" && tmpl.HighPriority {
		smsOutcome := models.NotificationSent
		if err := d.sendSMS(ctx, applicant.Phone, body); err != nil {
			d.logger.Error("sms send failed", map[string]interface{}{
				"applicantId": applicant.ID,
				"error":       err.Error(),
			})
			smsOutcome = models.NotificationFailed
			outcome = models.NotificationFailed
		}
		d.record(ctx, applicant, applicant.Phone, models.ChannelSMS, subject, body, smsOutcome)
	}

	return outcome
}

func (d *Dispatcher) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(d.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, phone, body string) error {
	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// record appends to the audit log. A logging failure here is itself only
// logged: the audit write must not turn a delivered notification into an
// error path.
func (d *Dispatcher) record(ctx context.Context, applicant *models.Applicant, recipient, channel, subject, body, outcome string) {
	err := d.recorder.Append(ctx, &models.NotificationRecord{
		ApplicantID: applicant.ID,
		Recipient:   recipient,
		Channel:     channel,
		Subject:     subject,
		Body:        body,
		Outcome:     outcome,
	})
	if err != nil {
		d.logger.Error("notification record append failed", map[string]interface{}{
			"applicantId": applicant.ID,
			"error":       err.Error(),
		})
	}
}

func renderTemplate(tmpl string, data map[string]string) string {
	out := tmpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

func defaultTemplates() map[string]models.NotificationTemplate {
	return map[string]models.NotificationTemplate{
		TemplateApplicationReceived: {
			Name:         TemplateApplicationReceived,
			Subject:      "We received your application for {{roleTitle}}",
			Body:         "Hi {{name}},\n\nThanks for applying for {{roleTitle}}. Our team will review your application and get back to you.\n\nYour application reference is {{applicationId}}.",
			HighPriority: false,
		},
	}
}
