// internal/evaluation/store.go
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/models"

	"github.com/redis/go-redis/v9"
)

// RunStore owns the current evaluation run per role. A run is replaced whole:
// Evaluate computes into a fresh slice and swaps it in under the write lock,
// so a reader holding a result slice from Get never observes mutation.
// Runs are mirrored to redis so the latest ranking survives a restart.
type RunStore struct {
	mu     sync.RWMutex
	runs   map[string]*models.EvaluationRun
	client *redis.Client
	ttl    time.Duration
}

func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{
		runs:   make(map[string]*models.EvaluationRun),
		client: client,
		ttl:    ttl,
	}
}

func runKey(roleID string) string {
	return "evaluation:run:" + roleID
}

// Replace installs a new run for the role, discarding the previous one.
func (s *RunStore) Replace(ctx context.Context, run *models.EvaluationRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.Set(ctx, runKey(run.RoleID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	s.runs[run.RoleID] = run
	return nil
}

// Get returns the current run for the role, falling back to redis when the
// in-memory map is cold (fresh process). Returns nil when no run exists.
func (s *RunStore) Get(ctx context.Context, roleID string) (*models.EvaluationRun, error) {
	s.mu.RLock()
	run, ok := s.runs[roleID]
	s.mu.RUnlock()
	if ok {
		return run, nil
	}

	payload, err := s.client.Get(ctx, runKey(roleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	var loaded models.EvaluationRun
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}

	s.mu.Lock()
	// Another goroutine may have installed a run while we were loading;
	// the installed one is newer.
	if existing, ok := s.runs[roleID]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.runs[roleID] = &loaded
	s.mu.Unlock()
	return &loaded, nil
}

// DeleteResult removes exactly one applicant's entry from the role's latest
// run. Remaining entries keep the ranks assigned at run time. Returns the
// remaining entry count, or EVALUATION_NOT_FOUND when the applicant has no
// entry in the current run.
func (s *RunStore) DeleteResult(ctx context.Context, roleID, applicantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[roleID]
	if !ok {
		return 0, commonerrors.NewEvaluationNotFoundError(applicantID)
	}

	idx := -1
	for i, r := range run.Results {
		if r.ApplicantID == applicantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, commonerrors.NewEvaluationNotFoundError(applicantID)
	}

	// Copy-on-write: readers iterating the old slice are unaffected.
	next := &models.EvaluationRun{
		RoleID:  run.RoleID,
		RunAt:   run.RunAt,
		Results: make([]models.EvaluationResult, 0, len(run.Results)-1),
	}
	next.Results = append(next.Results, run.Results[:idx]...)
	next.Results = append(next.Results, run.Results[idx+1:]...)

	payload, err := json.Marshal(next)
	if err != nil {
		return 0, fmt.Errorf("marshal run: %w", err)
	}
	if err := s.client.Set(ctx, runKey(roleID), payload, s.ttl).Err(); err != nil {
		return 0, fmt.Errorf("persist run: %w", err)
	}

	s.runs[roleID] = next
	return len(next.Results), nil
}

// DeleteByApplicant scans current runs for the applicant's entry and removes
// it. The deletion interface identifies entries by applicant alone. The scan
// and the delete take the lock separately; a concurrent delete that wins the
// race surfaces as not-found from DeleteResult, which is the idempotent
// outcome either way.
func (s *RunStore) DeleteByApplicant(ctx context.Context, applicantID string) (int, error) {
	s.mu.Lock()
	roleID := ""
	for rid, run := range s.runs {
		for _, r := range run.Results {
			if r.ApplicantID == applicantID {
				roleID = rid
				break
			}
		}
		if roleID != "" {
			break
		}
	}
	s.mu.Unlock()

	if roleID == "" {
		return 0, commonerrors.NewEvaluationNotFoundError(applicantID)
	}
	return s.DeleteResult(ctx, roleID, applicantID)
}
