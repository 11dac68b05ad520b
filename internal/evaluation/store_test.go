// internal/evaluation/store_test.go
package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/models"
)

func sampleRun(roleID string, applicantIDs ...string) *models.EvaluationRun {
	run := &models.EvaluationRun{
		RoleID: roleID,
		RunAt:  time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	}
	for i, id := range applicantIDs {
		run.Results = append(run.Results, models.EvaluationResult{
			ApplicantID: id,
			RoleID:      roleID,
			FitScore:    float64(90 - 10*i),
			Confidence:  models.ConfidenceNormal,
			Rank:        i + 1,
			RankedAt:    run.RunAt,
		})
	}
	return run
}

func TestRunStore_ReplaceAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, sampleRun("role-1", "app-1", "app-2")))

	run, err := store.Get(ctx, "role-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "app-1", run.Results[0].ApplicantID)
	assert.Equal(t, 1, run.Results[0].Rank)
}

func TestRunStore_GetMissingRole(t *testing.T) {
	store := newTestStore(t)

	run, err := store.Get(context.Background(), "role-missing")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRunStore_GetFallsBackToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	first := NewRunStore(client, time.Hour)
	require.NoError(t, first.Replace(ctx, sampleRun("role-1", "app-1")))

	// A fresh store over the same redis simulates a process restart.
	second := NewRunStore(client, time.Hour)
	run, err := second.Get(ctx, "role-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "app-1", run.Results[0].ApplicantID)
}

func TestRunStore_DeleteResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, sampleRun("role-1", "app-1", "app-2", "app-3")))

	remaining, err := store.DeleteResult(ctx, "role-1", "app-2")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	run, err := store.Get(ctx, "role-1")
	require.NoError(t, err)
	require.Len(t, run.Results, 2)

	// Ranks keep the values assigned at run time; no renumbering.
	assert.Equal(t, "app-1", run.Results[0].ApplicantID)
	assert.Equal(t, 1, run.Results[0].Rank)
	assert.Equal(t, "app-3", run.Results[1].ApplicantID)
	assert.Equal(t, 3, run.Results[1].Rank)
}

func TestRunStore_DeleteResultIdempotence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, sampleRun("role-1", "app-1", "app-2")))

	_, err := store.DeleteResult(ctx, "role-1", "app-1")
	require.NoError(t, err)

	// Second delete of the same entry reports not found.
	_, err = store.DeleteResult(ctx, "role-1", "app-1")
	require.Error(t, err)
	assert.True(t, commonerrors.IsCode(err, commonerrors.ErrCodeEvaluationNotFound))
}

func TestRunStore_DeleteByApplicant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, sampleRun("role-1", "app-1")))
	require.NoError(t, store.Replace(ctx, sampleRun("role-2", "app-2", "app-3")))

	remaining, err := store.DeleteByApplicant(ctx, "app-3")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	run, err := store.Get(ctx, "role-2")
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "app-2", run.Results[0].ApplicantID)

	// Other role's run is untouched.
	run, err = store.Get(ctx, "role-1")
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
}

func TestRunStore_DeleteByApplicantNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DeleteByApplicant(context.Background(), "app-unknown")
	require.Error(t, err)
	assert.True(t, commonerrors.IsCode(err, commonerrors.ErrCodeEvaluationNotFound))
}

func TestRunStore_DeletePersistsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	store := NewRunStore(client, time.Hour)
	require.NoError(t, store.Replace(ctx, sampleRun("role-1", "app-1", "app-2")))

	_, err := store.DeleteResult(ctx, "role-1", "app-1")
	require.NoError(t, err)

	reloaded := NewRunStore(client, time.Hour)
	run, err := reloaded.Get(ctx, "role-1")
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "app-2", run.Results[0].ApplicantID)
}
