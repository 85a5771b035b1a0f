package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/testing/leaktest"
)

type testJob struct {
	executed *int32
	done     *sync.WaitGroup
	err      error
}

func (j *testJob) Name() string { return "test" }

func (j *testJob) Process(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	if j.done != nil {
		j.done.Done()
	}
	return j.err
}

// blockingJob holds a worker until ctx is cancelled
type blockingJob struct {
	started chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Process(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestPool(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	var executed int32
	var done sync.WaitGroup
	pool := NewPool(TestWorkerCount, TestQueueSize)
	pool.Start(context.Background())

	done.Add(TestExpectedJobCount)
	require.NoError(t, pool.Enqueue(&testJob{executed: &executed, done: &done}))
	require.NoError(t, pool.Enqueue(&testJob{executed: &executed, done: &done, err: errors.New("boom")}))
	done.Wait()

	pool.Stop()
	assert.Equal(t, int32(TestExpectedJobCount), atomic.LoadInt32(&executed))
	checker.Check(0)
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var executed int32
	assert.ErrorIs(t, pool.Enqueue(&testJob{executed: &executed}), ErrPoolStopped)
}

func TestPool_QueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	blocker := &blockingJob{started: make(chan struct{})}
	require.NoError(t, pool.Enqueue(blocker))
	<-blocker.started

	var executed int32
	require.NoError(t, pool.Enqueue(&testJob{executed: &executed}))
	assert.ErrorIs(t, pool.Enqueue(&testJob{executed: &executed}), ErrQueueFull)
}

func TestPool_StopCancelsRunningJobs(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())

	blocker := &blockingJob{started: make(chan struct{})}
	require.NoError(t, pool.Enqueue(blocker))
	<-blocker.started

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the running job")
	}
}
