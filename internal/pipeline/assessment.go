// internal/pipeline/assessment.go
package pipeline

import (
	"context"
	"errors"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/models"
	"candidate-pipeline/internal/scoring"
)

// Scorer produces the four-dimension assessment scores for a resume.
type Scorer interface {
	Score(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error)
}

// AssessmentFinalizer transitions a pending assessment to a terminal status.
// It must be a no-op when the assessment already left pending.
type AssessmentFinalizer interface {
	Finalize(ctx context.Context, assessmentID, status string, overall, skills, experience, education int, insights []string) (bool, error)
}

// RoleLookup fetches the role profile a resume is scored against.
type RoleLookup interface {
	Get(ctx context.Context, id string) (*models.RoleProfile, error)
}

// AssessmentProcessor drives one pending assessment to a terminal state:
// completed with scores on scorer success, failed with a reason on scorer
// failure. Either way the assessment never stays pending after processing.
type AssessmentProcessor struct {
	scorer      Scorer
	assessments AssessmentFinalizer
	roles       RoleLookup
	logger      logger.Logger
}

func NewAssessmentProcessor(scorer Scorer, assessments AssessmentFinalizer, roles RoleLookup, log logger.Logger) *AssessmentProcessor {
	return &AssessmentProcessor{
		scorer:      scorer,
		assessments: assessments,
		roles:       roles,
		logger:      log.WithFields(map[string]interface{}{"component": "assessment-processor"}),
	}
}

func (p *AssessmentProcessor) Process(ctx context.Context, assessmentID, roleID string, resumeText *string) error {
	if resumeText == nil || *resumeText == "" {
		// Extraction failures normally produce a terminal assessment at
		// intake; a pending one with no text can only come from the sweep.
		return p.markFailed(ctx, assessmentID, "no resume text available for scoring", nil)
	}

	role, err := p.roles.Get(ctx, roleID)
	if err != nil {
		return err
	}

	result, err := p.scorer.Score(ctx, *resumeText, role)
	if err != nil {
		reason := "automated scoring failed"
		if errors.Is(err, scoring.ErrScoringTimeout) {
			reason = "automated scoring timed out"
		}
		return p.markFailed(ctx, assessmentID, reason, err)
	}

	applied, err := p.assessments.Finalize(ctx, assessmentID, models.AssessmentStatusCompleted,
		result.Overall, result.Skills, result.Experience, result.Education, result.Insights)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race to another worker or the sweep; their result stands.
		p.logger.Debug("assessment already finalized", map[string]interface{}{
			"assessmentId": assessmentID,
		})
	}
	return nil
}

func (p *AssessmentProcessor) markFailed(ctx context.Context, assessmentID, reason string, cause error) error {
	_, err := p.assessments.Finalize(ctx, assessmentID, models.AssessmentStatusFailed,
		0, 0, 0, 0, []string{reason})
	if err != nil {
		return err
	}
	if cause == nil {
		return commonerrors.NewScoringFailedError(errors.New(reason))
	}
	if errors.Is(cause, scoring.ErrScoringTimeout) {
		return commonerrors.NewScoringTimeoutError()
	}
	return commonerrors.NewScoringFailedError(cause)
}
