// internal/pipeline/pool.go

// Package pipeline runs the background work detached from intake responses:
// scoring, notification delivery and search indexing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/common/metrics"
	"candidate-pipeline/internal/common/observability"
)

// Task kinds, used for metrics labels and logging.
const (
	TaskScoring      = "scoring"
	TaskNotification = "notification"
	TaskIndexing     = "indexing"
)

// ErrQueueFull is returned by Submit when the task queue is saturated. Intake
// never propagates it to the submitter; the recovery sweep picks the work up.
var ErrQueueFull = errors.New("task queue full")

// Task is one unit of detached background work.
type Task struct {
	Kind        string
	ApplicantID string
	Run         func(ctx context.Context) error
}

// Pool executes tasks on a fixed set of workers. Task failures are terminal
// for the task: they are logged and counted, never bubbled to the submitter.
type Pool struct {
	tasks       chan Task
	workers     int
	taskTimeout time.Duration
	logger      logger.Logger
	obs         *observability.Observability
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

func NewPool(workers, queueSize int, taskTimeout time.Duration, obs *observability.Observability, log logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		tasks:       make(chan Task, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
		logger:      log.WithFields(map[string]interface{}{"component": "task-pool"}),
		obs:         obs,
	}
}

// Start launches the workers. Tasks already queued begin draining immediately.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("task pool started", map[string]interface{}{
		"workers":   p.workers,
		"queueSize": cap(p.tasks),
	})
}

// Submit enqueues a task without blocking the caller. A full queue is reported
// to the caller and counted; it must not stall the intake response path.
func (p *Pool) Submit(task Task) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		metrics.PipelineTasksFailed.WithLabelValues(task.Kind, "QUEUE_FULL").Inc()
		p.logger.Warn("task queue full, dropping task", map[string]interface{}{
			"kind":        task.Kind,
			"applicantId": task.ApplicantID,
		})
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for in-flight work to finish, up
// to the context deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.tasks) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		p.execute(id, task)
	}
}

func (p *Pool) execute(workerID int, task Task) {
	ctx := context.Background()
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.runRecovered(ctx, task)
	elapsed := time.Since(start)

	metrics.PipelineTaskDuration.WithLabelValues(task.Kind).Observe(elapsed.Seconds())
	if p.obs != nil {
		p.obs.RecordTaskDuration(ctx, task.Kind, elapsed)
	}

	if err != nil {
		metrics.PipelineTasksFailed.WithLabelValues(task.Kind, string(commonerrors.CodeOf(err))).Inc()
		if p.obs != nil {
			p.obs.RecordTaskProcessed(ctx, task.Kind, "failed")
		}
		p.logger.WithError(err).Error("background task failed", map[string]interface{}{
			"kind":        task.Kind,
			"applicantId": task.ApplicantID,
			"worker":      workerID,
			"durationMs":  elapsed.Milliseconds(),
		})
		return
	}

	metrics.PipelineTasksCompleted.WithLabelValues(task.Kind).Inc()
	if p.obs != nil {
		p.obs.RecordTaskProcessed(ctx, task.Kind, "completed")
	}
	p.logger.Debug("background task completed", map[string]interface{}{
		"kind":        task.Kind,
		"applicantId": task.ApplicantID,
		"durationMs":  elapsed.Milliseconds(),
	})
}

// runRecovered isolates worker goroutines from panicking task code.
func (p *Pool) runRecovered(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return task.Run(ctx)
}

type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.value)
}
