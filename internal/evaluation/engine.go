// internal/evaluation/engine.go

// Package evaluation ranks a cohort of applicants against one role profile.
package evaluation

import (
	"context"
	"sort"
	"strings"
	"time"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/common/metrics"
	"candidate-pipeline/internal/models"
)

// ApplicantLister provides the applicants in scope for a run.
type ApplicantLister interface {
	ListByRole(ctx context.Context, roleID string, ids []string) ([]models.Applicant, error)
}

// AssessmentGetter looks up an applicant's assessment.
type AssessmentGetter interface {
	GetByApplicant(ctx context.Context, applicantID string) (*models.Assessment, error)
}

// RoleGetter looks up the role profile a cohort is ranked against.
type RoleGetter interface {
	Get(ctx context.Context, id string) (*models.RoleProfile, error)
}

// Engine computes evaluation runs.
type Engine struct {
	applicants  ApplicantLister
	assessments AssessmentGetter
	roles       RoleGetter
	store       *RunStore
	logger      logger.Logger
}

func NewEngine(applicants ApplicantLister, assessments AssessmentGetter, roles RoleGetter, store *RunStore, log logger.Logger) *Engine {
	return &Engine{
		applicants:  applicants,
		assessments: assessments,
		roles:       roles,
		store:       store,
		logger:      log.WithFields(map[string]interface{}{"component": "evaluation-engine"}),
	}
}

// Evaluate scores every applicant in scope against the role, sorts descending
// by fit score (ties broken by earliest application), assigns 1-based dense
// ranks and replaces the role's previous run whole. When applicantIDs is empty
// the scope is every applicant tied to the role.
func (e *Engine) Evaluate(ctx context.Context, roleID string, applicantIDs []string) ([]models.EvaluationResult, error) {
	role, err := e.roles.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, commonerrors.NewRoleNotFoundError(roleID)
	}

	applicants, err := e.applicants.ListByRole(ctx, roleID, applicantIDs)
	if err != nil {
		return nil, err
	}

	runAt := time.Now().UTC()
	results := make([]models.EvaluationResult, 0, len(applicants))

	type scored struct {
		result    models.EvaluationResult
		createdAt time.Time
	}
	entries := make([]scored, 0, len(applicants))

	for _, a := range applicants {
		assessment, err := e.assessments.GetByApplicant(ctx, a.ID)
		if err != nil {
			return nil, err
		}

		matching, missing := matchSkills(role.RequiredSkills, a.ResumeText)
		roleMatch := skillMatchScore(role.RequiredSkills, matching)

		result := models.EvaluationResult{
			ApplicantID:    a.ID,
			ApplicantName:  a.Name,
			RoleID:         roleID,
			MatchingSkills: matching,
			MissingSkills:  missing,
			RankedAt:       runAt,
		}

		if assessment != nil && assessment.Status == models.AssessmentStatusCompleted {
			// Blend generic resume quality with role-specific matching:
			// either signal alone is incomplete.
			result.FitScore = clampFloat((float64(assessment.Overall) + roleMatch) / 2)
			result.Confidence = models.ConfidenceNormal
		} else {
			// No completed assessment: rank from role matching alone and
			// flag the entry instead of fabricating assessment numbers.
			result.FitScore = clampFloat(roleMatch)
			result.Confidence = models.ConfidenceLow
		}

		entries = append(entries, scored{result: result, createdAt: a.CreatedAt})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].result.FitScore != entries[j].result.FitScore {
			return entries[i].result.FitScore > entries[j].result.FitScore
		}
		if !entries[i].createdAt.Equal(entries[j].createdAt) {
			return entries[i].createdAt.Before(entries[j].createdAt)
		}
		return entries[i].result.ApplicantID < entries[j].result.ApplicantID
	})

	for i := range entries {
		entries[i].result.Rank = i + 1
		results = append(results, entries[i].result)
	}

	run := &models.EvaluationRun{RoleID: roleID, RunAt: runAt, Results: results}
	if err := e.store.Replace(ctx, run); err != nil {
		return nil, err
	}

	metrics.EvaluationRuns.WithLabelValues(roleID).Inc()
	e.logger.Info("evaluation run completed", map[string]interface{}{
		"roleId":     roleID,
		"applicants": len(results),
	})
	return results, nil
}

// DeleteResult removes one applicant's entry from the latest run without
// renumbering the remaining ranks.
func (e *Engine) DeleteResult(ctx context.Context, applicantID string) (int, error) {
	return e.store.DeleteByApplicant(ctx, applicantID)
}

// matchSkills splits the role's required skills into those present in the
// resume text and those absent. A nil resume matches nothing.
func matchSkills(required []string, resumeText *string) (matching, missing []string) {
	matching = []string{}
	missing = []string{}

	var haystack string
	if resumeText != nil {
		haystack = strings.ToLower(*resumeText)
	}

	for _, skill := range required {
		if haystack != "" && strings.Contains(haystack, strings.ToLower(skill)) {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matching, missing
}

// skillMatchScore converts the matched fraction into a 0-100 score. A role
// with no required skills gives a neutral 50 so it neither inflates nor sinks
// the blend.
func skillMatchScore(required, matching []string) float64 {
	if len(required) == 0 {
		return 50
	}
	return 100 * float64(len(matching)) / float64(len(required))
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
