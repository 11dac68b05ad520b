// internal/intake/orchestrator.go

// Package intake sequences an application submission through validation,
// deduplication and persistence, then detaches the notification, scoring and
// indexing work.
package intake

import (
	"context"
	"errors"
	"strings"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/common/metrics"
	"candidate-pipeline/internal/common/validation"
	"candidate-pipeline/internal/extract"
	"candidate-pipeline/internal/models"
	"candidate-pipeline/internal/notify"
	"candidate-pipeline/internal/pipeline"
	"candidate-pipeline/internal/store"
)

const insufficientDataInsight = "resume contained insufficient text for automated scoring"

// Submission is one application as received at the boundary.
type Submission struct {
	Name       string
	Email      string
	Phone      string
	ProfileURL string
	RoleID     string

	// Optional resume document, raw bytes plus original filename.
	ResumeFilename string
	ResumeData     []byte
}

// Result is the synchronous outcome of a successful submission. Background
// work is already queued when it is returned.
type Result struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

// ApplicantStore is the persistence surface intake needs.
type ApplicantStore interface {
	FindByEmailAndRole(ctx context.Context, email, roleID string) (*models.Applicant, error)
	Create(ctx context.Context, a *models.Applicant) (*models.Applicant, error)
}

// AssessmentStore creates the assessment rows intake owns: pending ones that
// scoring will finalize, and terminal ones when scoring is skipped.
type AssessmentStore interface {
	CreatePending(ctx context.Context, applicantID string) (*models.Assessment, error)
	CreateTerminal(ctx context.Context, applicantID, status string, insights []string) (*models.Assessment, error)
}

// RoleStore verifies the target role exists before anything is persisted and
// provides the role profile for notification rendering.
type RoleStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*models.RoleProfile, error)
}

// Notifier delivers the confirmation message; runs detached.
type Notifier interface {
	Dispatch(ctx context.Context, applicant *models.Applicant, templateName string, data map[string]string) string
}

// Indexer mirrors the applicant into the search index; runs detached and is
// nil when search is disabled.
type Indexer interface {
	IndexApplicant(ctx context.Context, applicant *models.Applicant) error
}

// Orchestrator is the intake state machine. Validation and deduplication run
// synchronously and may abort; once the applicant row is created the reported
// outcome is success no matter what the detached stages do.
type Orchestrator struct {
	applicants  ApplicantStore
	assessments AssessmentStore
	roles       RoleStore
	extractor   *extract.Extractor
	processor   *pipeline.AssessmentProcessor
	notifier    Notifier
	indexer     Indexer
	pool        *pipeline.Pool
	logger      logger.Logger
}

func NewOrchestrator(
	applicants ApplicantStore,
	assessments AssessmentStore,
	roles RoleStore,
	extractor *extract.Extractor,
	processor *pipeline.AssessmentProcessor,
	notifier Notifier,
	indexer Indexer,
	pool *pipeline.Pool,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		applicants:  applicants,
		assessments: assessments,
		roles:       roles,
		extractor:   extractor,
		processor:   processor,
		notifier:    notifier,
		indexer:     indexer,
		pool:        pool,
		logger:      log.WithFields(map[string]interface{}{"component": "intake-orchestrator"}),
	}
}

// Submit runs one submission through the pipeline. It returns once the
// applicant row is committed; notification, scoring and indexing continue in
// the background.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	// Validating.
	if err := o.validate(ctx, &sub); err != nil {
		metrics.IntakeSubmissions.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	email := store.NormalizeEmail(sub.Email)

	// Deduplicating: the only stage allowed to abort after validation.
	existing, err := o.applicants.FindByEmailAndRole(ctx, email, sub.RoleID)
	if err != nil {
		metrics.IntakeSubmissions.WithLabelValues("error").Inc()
		return nil, commonerrors.NewQueryExecutionFailedError(err)
	}
	if existing != nil {
		metrics.IntakeSubmissions.WithLabelValues("duplicate").Inc()
		return nil, commonerrors.NewDuplicateApplicationError(email, sub.RoleID)
	}

	// Extraction happens before persist so the stored row carries the text,
	// but its failure never aborts the submission.
	hasDocument := len(sub.ResumeData) > 0
	resumeText, extractionOK := o.extractResume(&sub)

	// Persisting: the commit point.
	applicant := &models.Applicant{
		Name:       strings.TrimSpace(sub.Name),
		Email:      email,
		Phone:      strings.TrimSpace(sub.Phone),
		ProfileURL: strings.TrimSpace(sub.ProfileURL),
		RoleID:     sub.RoleID,
		ResumeText: resumeText,
	}
	created, err := o.applicants.Create(ctx, applicant)
	if err != nil {
		metrics.IntakeSubmissions.WithLabelValues("error").Inc()
		return nil, commonerrors.NewDatabaseInsertFailedError(err)
	}

	// Dispatched: everything from here on is detached and cannot change the
	// outcome reported to the submitter.
	o.dispatch(ctx, created, hasDocument, extractionOK)

	metrics.IntakeSubmissions.WithLabelValues("accepted").Inc()
	o.logger.Info("application accepted", map[string]interface{}{
		"applicationId": created.ID,
		"roleId":        created.RoleID,
	})
	return &Result{ApplicationID: created.ID, Status: created.Status}, nil
}

func (o *Orchestrator) validate(ctx context.Context, sub *Submission) error {
	var missing []string
	if strings.TrimSpace(sub.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(sub.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(sub.RoleID) == "" {
		missing = append(missing, "roleId")
	}
	if len(missing) > 0 {
		return commonerrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	if !validation.ValidateEmail(strings.TrimSpace(sub.Email)) {
		return commonerrors.NewValidationError("email is not a valid address")
	}
	if p := strings.TrimSpace(sub.Phone); p != "" && !validation.ValidatePhone(p) {
		return commonerrors.NewValidationError("phone is not a valid number")
	}
	if u := strings.TrimSpace(sub.ProfileURL); u != "" && !validation.ValidateURL(u) {
		return commonerrors.NewValidationError("profileUrl is not a valid link")
	}
	if len(sub.ResumeData) > 0 && sub.ResumeFilename == "" {
		return commonerrors.NewValidationError("resume document requires a filename")
	}

	ok, err := o.roles.Exists(ctx, sub.RoleID)
	if err != nil {
		return commonerrors.NewQueryExecutionFailedError(err)
	}
	if !ok {
		return commonerrors.NewValidationError("unknown roleId: " + sub.RoleID)
	}
	return nil
}

// extractResume returns the extracted text and whether it is usable for
// scoring. Extraction failure is recovered locally: the applicant is stored
// with no resume text.
func (o *Orchestrator) extractResume(sub *Submission) (*string, bool) {
	if len(sub.ResumeData) == 0 {
		return nil, false
	}

	text, err := o.extractor.Extract(sub.ResumeFilename, sub.ResumeData)
	if err != nil {
		o.logger.WithError(err).Warn("resume extraction failed, continuing without text", map[string]interface{}{
			"filename":     sub.ResumeFilename,
			"insufficient": errors.Is(err, extract.ErrInsufficientText),
		})
		return nil, false
	}
	return &text, true
}

func (o *Orchestrator) dispatch(ctx context.Context, applicant *models.Applicant, hasDocument, extractionOK bool) {
	// Assessment row creation is sequenced before the response so the record
	// is queryable as pending (or terminal) as soon as intake returns. No
	// document at all means no assessment is warranted.
	switch {
	case extractionOK:
		assessment, err := o.assessments.CreatePending(ctx, applicant.ID)
		if err != nil {
			o.logger.WithError(err).Error("creating pending assessment failed", map[string]interface{}{
				"applicationId": applicant.ID,
			})
		} else {
			o.enqueueScoring(applicant, assessment.ID)
		}
	case hasDocument:
		// A document was supplied but yielded no usable text: record the
		// terminal outcome directly instead of spending a scorer call on
		// unusable input.
		_, err := o.assessments.CreateTerminal(ctx, applicant.ID, models.AssessmentStatusCompleted,
			[]string{insufficientDataInsight})
		if err != nil {
			o.logger.WithError(err).Error("creating terminal assessment failed", map[string]interface{}{
				"applicationId": applicant.ID,
			})
		}
	}

	roleTitle := applicant.RoleID
	if role, err := o.roles.Get(ctx, applicant.RoleID); err == nil && role != nil {
		roleTitle = role.Title
	}

	applicantCopy := *applicant
	_ = o.pool.Submit(pipeline.Task{
		Kind:        pipeline.TaskNotification,
		ApplicantID: applicant.ID,
		Run: func(taskCtx context.Context) error {
			o.notifier.Dispatch(taskCtx, &applicantCopy, notify.TemplateApplicationReceived, map[string]string{
				"name":          applicantCopy.Name,
				"applicationId": applicantCopy.ID,
				"roleTitle":     roleTitle,
			})
			return nil
		},
	})

	if o.indexer != nil {
		_ = o.pool.Submit(pipeline.Task{
			Kind:        pipeline.TaskIndexing,
			ApplicantID: applicant.ID,
			Run: func(taskCtx context.Context) error {
				return o.indexer.IndexApplicant(taskCtx, &applicantCopy)
			},
		})
	}
}

func (o *Orchestrator) enqueueScoring(applicant *models.Applicant, assessmentID string) {
	resumeText := applicant.ResumeText
	roleID := applicant.RoleID
	applicantID := applicant.ID
	// A full queue is not an intake failure; the recovery sweep finds the
	// pending assessment and re-enqueues it.
	_ = o.pool.Submit(pipeline.Task{
		Kind:        pipeline.TaskScoring,
		ApplicantID: applicantID,
		Run: func(taskCtx context.Context) error {
			return o.processor.Process(taskCtx, assessmentID, roleID, resumeText)
		},
	})
}
