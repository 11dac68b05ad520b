// internal/pipeline/assessment_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/models"
	"candidate-pipeline/internal/scoring"
	"candidate-pipeline/internal/store"
)

type mockScorer struct {
	scoreFunc func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error)
}

func (m *mockScorer) Score(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
	return m.scoreFunc(ctx, resumeText, role)
}

type finalizeCall struct {
	assessmentID string
	status       string
	overall      int
	insights     []string
}

type mockFinalizer struct {
	applied bool
	err     error
	calls   []finalizeCall
}

func (m *mockFinalizer) Finalize(ctx context.Context, assessmentID, status string, overall, skills, experience, education int, insights []string) (bool, error) {
	m.calls = append(m.calls, finalizeCall{
		assessmentID: assessmentID,
		status:       status,
		overall:      overall,
		insights:     insights,
	})
	return m.applied, m.err
}

type mockRoleLookup struct {
	role *models.RoleProfile
	err  error
}

func (m *mockRoleLookup) Get(ctx context.Context, id string) (*models.RoleProfile, error) {
	return m.role, m.err
}

func TestAssessmentProcessor_Success(t *testing.T) {
	scorer := &mockScorer{
		scoreFunc: func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
			assert.Equal(t, "five years of Go", resumeText)
			require.NotNil(t, role)
			return &scoring.Result{
				Overall:    82,
				Skills:     85,
				Experience: 80,
				Education:  75,
				Insights:   []string{"strong backend profile"},
			}, nil
		},
	}
	finalizer := &mockFinalizer{applied: true}
	roles := &mockRoleLookup{role: &models.RoleProfile{ID: "role-1", RequiredSkills: []string{"Go"}}}

	p := NewAssessmentProcessor(scorer, finalizer, roles, logger.NewNoOpLogger())

	resume := "five years of Go"
	err := p.Process(context.Background(), "as-1", "role-1", &resume)
	require.NoError(t, err)

	require.Len(t, finalizer.calls, 1)
	call := finalizer.calls[0]
	assert.Equal(t, "as-1", call.assessmentID)
	assert.Equal(t, models.AssessmentStatusCompleted, call.status)
	assert.Equal(t, 82, call.overall)
	assert.Equal(t, []string{"strong backend profile"}, call.insights)
}

func TestAssessmentProcessor_ScorerFailureMarksFailed(t *testing.T) {
	scorer := &mockScorer{
		scoreFunc: func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
			return nil, scoring.ErrScoringFailed
		},
	}
	finalizer := &mockFinalizer{applied: true}
	roles := &mockRoleLookup{role: &models.RoleProfile{ID: "role-1"}}

	p := NewAssessmentProcessor(scorer, finalizer, roles, logger.NewNoOpLogger())

	resume := "some resume text"
	err := p.Process(context.Background(), "as-1", "role-1", &resume)
	require.Error(t, err)
	assert.True(t, commonerrors.IsCode(err, commonerrors.ErrCodeScoringFailed))

	require.Len(t, finalizer.calls, 1)
	call := finalizer.calls[0]
	assert.Equal(t, models.AssessmentStatusFailed, call.status)
	assert.Equal(t, 0, call.overall)
	assert.Equal(t, []string{"automated scoring failed"}, call.insights)
}

func TestAssessmentProcessor_ScorerTimeout(t *testing.T) {
	scorer := &mockScorer{
		scoreFunc: func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
			return nil, scoring.ErrScoringTimeout
		},
	}
	finalizer := &mockFinalizer{applied: true}
	roles := &mockRoleLookup{role: &models.RoleProfile{ID: "role-1"}}

	p := NewAssessmentProcessor(scorer, finalizer, roles, logger.NewNoOpLogger())

	resume := "some resume text"
	err := p.Process(context.Background(), "as-1", "role-1", &resume)
	require.Error(t, err)
	assert.True(t, commonerrors.IsCode(err, commonerrors.ErrCodeScoringTimeout))

	require.Len(t, finalizer.calls, 1)
	assert.Equal(t, []string{"automated scoring timed out"}, finalizer.calls[0].insights)
}

func TestAssessmentProcessor_NoResumeText(t *testing.T) {
	finalizer := &mockFinalizer{applied: true}
	p := NewAssessmentProcessor(nil, finalizer, nil, logger.NewNoOpLogger())

	err := p.Process(context.Background(), "as-1", "role-1", nil)
	require.Error(t, err)
	assert.True(t, commonerrors.IsCode(err, commonerrors.ErrCodeScoringFailed))

	require.Len(t, finalizer.calls, 1)
	assert.Equal(t, models.AssessmentStatusFailed, finalizer.calls[0].status)
}

func TestAssessmentProcessor_AlreadyFinalized(t *testing.T) {
	scorer := &mockScorer{
		scoreFunc: func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
			return &scoring.Result{Overall: 70, Insights: []string{}}, nil
		},
	}
	// applied=false: another worker finalized first. Not an error.
	finalizer := &mockFinalizer{applied: false}
	roles := &mockRoleLookup{role: &models.RoleProfile{ID: "role-1"}}

	p := NewAssessmentProcessor(scorer, finalizer, roles, logger.NewNoOpLogger())

	resume := "some resume text"
	err := p.Process(context.Background(), "as-1", "role-1", &resume)
	require.NoError(t, err)
}

type mockPendingLister struct {
	stale []store.PendingAssessment
	err   error
}

func (m *mockPendingLister) ListPendingOlderThan(ctx context.Context, maxAge time.Duration) ([]store.PendingAssessment, error) {
	return m.stale, m.err
}

func TestSweeper_ReenqueuesStaleAssessments(t *testing.T) {
	resume := "stale but scoreable resume"
	lister := &mockPendingLister{
		stale: []store.PendingAssessment{
			{AssessmentID: "as-1", ApplicantID: "app-1", RoleID: "role-1", ResumeText: &resume},
		},
	}

	scored := make(chan string, 1)
	scorer := &mockScorer{
		scoreFunc: func(ctx context.Context, resumeText string, role *models.RoleProfile) (*scoring.Result, error) {
			scored <- resumeText
			return &scoring.Result{Overall: 60, Insights: []string{}}, nil
		},
	}
	finalizer := &mockFinalizer{applied: true}
	roles := &mockRoleLookup{role: &models.RoleProfile{ID: "role-1"}}
	processor := NewAssessmentProcessor(scorer, finalizer, roles, logger.NewNoOpLogger())

	pool := NewPool(1, 4, time.Second, nil, logger.NewNoOpLogger())
	pool.Start()

	sweeper := NewSweeper(lister, processor, pool, time.Minute, 5*time.Minute, logger.NewNoOpLogger())
	sweeper.SweepOnce(context.Background())

	select {
	case got := <-scored:
		assert.Equal(t, resume, got)
	case <-time.After(2 * time.Second):
		t.Fatal("stale assessment was not re-enqueued")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestSweeper_ListErrorDoesNotPanic(t *testing.T) {
	lister := &mockPendingLister{err: errors.New("db down")}
	sweeper := NewSweeper(lister, nil, nil, time.Minute, 5*time.Minute, logger.NewNoOpLogger())

	sweeper.SweepOnce(context.Background())
}
