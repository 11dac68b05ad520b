// internal/pipeline/sweep.go
package pipeline

import (
	"context"
	"time"

	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/store"
)

// PendingLister finds assessments stuck in pending, e.g. after a crash or a
// dropped task.
type PendingLister interface {
	ListPendingOlderThan(ctx context.Context, maxAge time.Duration) ([]store.PendingAssessment, error)
}

// Sweeper periodically re-enqueues stale pending assessments so no submission
// stays unscored just because the process died mid-task.
type Sweeper struct {
	assessments PendingLister
	processor   *AssessmentProcessor
	pool        *Pool
	interval    time.Duration
	maxAge      time.Duration
	logger      logger.Logger
}

func NewSweeper(assessments PendingLister, processor *AssessmentProcessor, pool *Pool, interval, maxAge time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{
		assessments: assessments,
		processor:   processor,
		pool:        pool,
		interval:    interval,
		maxAge:      maxAge,
		logger:      log.WithFields(map[string]interface{}{"component": "recovery-sweep"}),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce re-enqueues every pending assessment older than maxAge. Finalize
// only applies to assessments still pending, so re-enqueueing work that a
// slow worker finishes in the meantime is harmless.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	stale, err := s.assessments.ListPendingOlderThan(ctx, s.maxAge)
	if err != nil {
		s.logger.WithError(err).Error("listing stale pending assessments failed", nil)
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Info("re-enqueueing stale pending assessments", map[string]interface{}{
		"count": len(stale),
	})

	for _, pa := range stale {
		pa := pa
		err := s.pool.Submit(Task{
			Kind:        TaskScoring,
			ApplicantID: pa.ApplicantID,
			Run: func(ctx context.Context) error {
				return s.processor.Process(ctx, pa.AssessmentID, pa.RoleID, pa.ResumeText)
			},
		})
		if err != nil {
			// Queue still saturated; the next sweep will retry.
			return
		}
	}
}
