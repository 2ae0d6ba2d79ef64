package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQueueFull    = errors.New("queue full")
	ErrNotStarted   = errors.New("queue not started")
	ErrUnknownJobID = errors.New("unknown job")
)

// State is the lifecycle position of a job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Status reports the last known state of a job.
type Status struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	State      State      `json:"state"`
	Attempt    int        `json:"attempt"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour. MaxRetries of zero disables retries.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// History bounds how many finished job statuses are remembered.
	History int
	Logger  *zap.Logger
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool

	statuses map[string]*Status
	finished []string
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.History <= 0 {
		cfg.History = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:     name,
		handler:  handler,
		cfg:      cfg,
		logger:   cfg.Logger.With(zap.String("queue", name)),
		jobs:     make(chan Job, cfg.BufferSize),
		statuses: make(map[string]*Status),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue pushes a job onto the queue without blocking and returns its ID.
// A missing ID is generated.
func (q *Queue) Enqueue(job Job) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return "", fmt.Errorf("queue %s: %w", q.name, ErrNotStarted)
	}
	if err := q.ctx.Err(); err != nil {
		return "", fmt.Errorf("queue %s stopped: %w", q.name, err)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
	default:
		return "", fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}

	if _, ok := q.statuses[job.ID]; !ok {
		q.statuses[job.ID] = &Status{ID: job.ID, Type: job.Type, EnqueuedAt: job.Enqueued}
	}
	q.statuses[job.ID].State = StateQueued
	q.statuses[job.ID].Attempt = job.Attempt
	return job.ID, nil
}

// Status returns a copy of the job's last known status.
func (q *Queue) Status(id string) (Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[id]
	if !ok {
		return Status{}, ErrUnknownJobID
	}
	return *status, nil
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.setState(job, StateRunning, nil)
			if err := q.handler(q.ctx, job); err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.setState(job, StateSucceeded, nil)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	if job.Attempt >= q.cfg.MaxRetries {
		q.setState(job, StateFailed, err)
		q.logger.Error("job failed", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))
		return
	}
	job.Attempt++
	q.logger.Warn("job failed, retrying", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))

	q.wg.Add(1)
	go func(j Job) {
		defer q.wg.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.setState(j, StateFailed, q.ctx.Err())
			return
		case <-timer.C:
			if _, err := q.Enqueue(j); err != nil {
				q.setState(j, StateFailed, err)
				q.logger.Error("failed to requeue job", zap.String("job_id", j.ID), zap.Error(err))
			}
		}
	}(job)
}

func (q *Queue) setState(job Job, state State, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	status, ok := q.statuses[job.ID]
	if !ok {
		status = &Status{ID: job.ID, Type: job.Type, EnqueuedAt: job.Enqueued}
		q.statuses[job.ID] = status
	}
	status.State = state
	status.Attempt = job.Attempt
	status.Error = ""
	if err != nil {
		status.Error = err.Error()
	}
	if state != StateSucceeded && state != StateFailed {
		return
	}

	now := time.Now().UTC()
	status.FinishedAt = &now
	q.finished = append(q.finished, job.ID)
	for len(q.finished) > q.cfg.History {
		delete(q.statuses, q.finished[0])
		q.finished = q.finished[1:]
	}
}
