package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, q *Queue, id string, want State) Status {
	t.Helper()
	var status Status
	require.Eventually(t, func() bool {
		var err error
		status, err = q.Status(id)
		return err == nil && status.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return status
}

func TestQueueRunsJob(t *testing.T) {
	var calls int32
	q := NewQueue("schedule", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	id, err := q.Enqueue(Job{Type: "schedule.run"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	status := waitForState(t, q, id, StateSucceeded)
	assert.Equal(t, "schedule.run", status.Type)
	assert.NotNil(t, status.FinishedAt)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRetriesThenFails(t *testing.T) {
	var calls int32
	q := NewQueue("schedule", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	id, err := q.Enqueue(Job{ID: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)

	status := waitForState(t, q, id, StateFailed)
	assert.Equal(t, "boom", status.Error)
	assert.Equal(t, 2, status.Attempt)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueStopWaitsForPendingRetry(t *testing.T) {
	called := make(chan struct{}, 1)
	q := NewQueue("schedule", func(ctx context.Context, job Job) error {
		called <- struct{}{}
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Hour})
	q.Start(context.Background())

	id, err := q.Enqueue(Job{Type: "schedule.run"})
	require.NoError(t, err)
	<-called
	q.Stop()

	status, err := q.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, context.Canceled.Error(), status.Error)
	assert.Equal(t, 1, status.Attempt)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("schedule", func(context.Context, Job) error { return nil }, QueueConfig{})

	_, err := q.Enqueue(Job{})

	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("schedule", func(ctx context.Context, job Job) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	t.Cleanup(func() {
		close(release)
		q.Stop()
	})

	first, err := q.Enqueue(Job{})
	require.NoError(t, err)
	waitForState(t, q, first, StateRunning)

	_, err = q.Enqueue(Job{})
	require.NoError(t, err)
	_, err = q.Enqueue(Job{})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueStatusUnknown(t *testing.T) {
	q := NewQueue("schedule", func(context.Context, Job) error { return nil }, QueueConfig{})

	_, err := q.Status("missing")

	assert.ErrorIs(t, err, ErrUnknownJobID)
}
