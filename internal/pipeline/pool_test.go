// internal/pipeline/pool_test.go
package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-pipeline/internal/common/logger"
)

func TestPool_ExecutesSubmittedTasks(t *testing.T) {
	pool := NewPool(2, 8, time.Second, nil, logger.NewNoOpLogger())
	pool.Start()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	for _, id := range []string{"app-1", "app-2", "app-3"} {
		id := id
		wg.Add(1)
		err := pool.Submit(Task{
			Kind:        TaskScoring,
			ApplicantID: id,
			Run: func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
				return nil
			},
		})
		require.NoError(t, err)
	}

	wg.Wait()
	require.NoError(t, pool.Shutdown(context.Background()))

	assert.Len(t, seen, 3)
}

func TestPool_SubmitFullQueue(t *testing.T) {
	// Never started: nothing drains the queue.
	pool := NewPool(1, 1, time.Second, nil, logger.NewNoOpLogger())

	noop := func(ctx context.Context) error { return nil }
	require.NoError(t, pool.Submit(Task{Kind: TaskNotification, Run: noop}))

	err := pool.Submit(Task{Kind: TaskNotification, Run: noop})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPool_TaskFailureDoesNotStopWorkers(t *testing.T) {
	pool := NewPool(1, 8, time.Second, nil, logger.NewNoOpLogger())
	pool.Start()

	done := make(chan struct{})
	require.NoError(t, pool.Submit(Task{
		Kind: TaskScoring,
		Run: func(ctx context.Context) error {
			return errors.New("boom")
		},
	}))
	require.NoError(t, pool.Submit(Task{
		Kind: TaskScoring,
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a failing task")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_RecoversFromPanickingTask(t *testing.T) {
	pool := NewPool(1, 8, time.Second, nil, logger.NewNoOpLogger())
	pool.Start()

	done := make(chan struct{})
	require.NoError(t, pool.Submit(Task{
		Kind: TaskIndexing,
		Run: func(ctx context.Context) error {
			panic("bad task")
		},
	}))
	require.NoError(t, pool.Submit(Task{
		Kind: TaskIndexing,
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_TaskContextTimeout(t *testing.T) {
	pool := NewPool(1, 1, 20*time.Millisecond, nil, logger.NewNoOpLogger())
	pool.Start()

	observed := make(chan error, 1)
	require.NoError(t, pool.Submit(Task{
		Kind: TaskScoring,
		Run: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				observed <- ctx.Err()
			case <-time.After(2 * time.Second):
				observed <- nil
			}
			return nil
		},
	}))

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(3 * time.Second):
		t.Fatal("task never observed its deadline")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ShutdownWaitsForInflight(t *testing.T) {
	pool := NewPool(1, 1, time.Second, nil, logger.NewNoOpLogger())
	pool.Start()

	finished := false
	started := make(chan struct{})
	require.NoError(t, pool.Submit(Task{
		Kind: TaskNotification,
		Run: func(ctx context.Context) error {
			close(started)
			time.Sleep(50 * time.Millisecond)
			finished = true
			return nil
		},
	}))

	<-started
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.True(t, finished)
}
