// Package jobs runs profile updates in the background on a bounded queue.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/voice-fingerprint/internal/metrics"
)

var (
	// ErrQueueFull is returned by Submit when the buffer is at capacity.
	ErrQueueFull = errors.New("learning queue is full")
	// ErrQueueClosed is returned by Submit after Stop.
	ErrQueueClosed = errors.New("learning queue is closed")
)

// Task is one unit of background work.
type Task struct {
	ID     string
	UserID string
	Run    func(ctx context.Context) error
}

// State is the lifecycle position of a submitted task.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is what callers can observe about a submitted task.
type Status struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	State    State     `json:"state"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error,omitempty"`
	Updated  time.Time `json:"updated_at"`
}

// Options configures a Queue.
type Options struct {
	Workers     int
	Size        int
	MaxAttempts int
	Backoff     time.Duration
	// StatusTTL is how long finished task statuses stay queryable.
	StatusTTL time.Duration
	// Retryable reports whether a failed attempt should be retried. Nil retries everything.
	Retryable func(error) bool
}

// Queue is a bounded task buffer drained by a fixed set of workers.
type Queue struct {
	opts     Options
	tasks    chan Task
	statuses *cache.Cache
	log      *logrus.Entry
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	closed  bool
	started bool
	group   *errgroup.Group
	cancel  context.CancelFunc
}

// NewQueue creates a queue. Workers start on Start. m may be nil.
func NewQueue(opts Options, log *logrus.Entry, m *metrics.Metrics) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = time.Hour
	}
	if log == nil {
		log = logrus.WithField("component", "jobs")
	}
	return &Queue{
		opts:     opts,
		tasks:    make(chan Task, opts.Size),
		statuses: cache.New(opts.StatusTTL, opts.StatusTTL/2),
		log:      log,
		metrics:  m,
	}
}

// Start launches the workers. Cancelling ctx aborts in-flight tasks.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	workerCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.group, _ = errgroup.WithContext(workerCtx)
	for i := 0; i < q.opts.Workers; i++ {
		worker := i
		q.group.Go(func() error {
			for task := range q.tasks {
				q.observeDepth()
				q.process(workerCtx, worker, task)
			}
			return nil
		})
	}
	q.log.WithField("workers", q.opts.Workers).Info("Learning queue started")
}

// Submit enqueues task without blocking and returns its id. An empty
// task.ID is filled with a fresh UUID.
func (q *Queue) Submit(task Task) (string, error) {
	if task.Run == nil {
		return "", fmt.Errorf("task has no work")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}

	// recorded before the send so a fast worker cannot be overwritten
	q.setStatus(Status{ID: task.ID, UserID: task.UserID, State: StatePending})
	select {
	case q.tasks <- task:
	default:
		q.statuses.Delete(task.ID)
		q.count("rejected")
		q.log.WithField("user_id", task.UserID).Warn("Learning queue full, task rejected")
		return "", ErrQueueFull
	}
	q.observeDepth()
	return task.ID, nil
}

// Status returns the last known status of a task.
func (q *Queue) Status(id string) (Status, bool) {
	v, ok := q.statuses.Get(id)
	if !ok {
		return Status{}, false
	}
	return v.(Status), true
}

// Len returns the number of tasks waiting.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Stop refuses new tasks and waits for queued ones to finish. If ctx ends
// first, in-flight tasks are cancelled and ctx.Err() is returned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	group, cancel := q.group, q.cancel
	q.mu.Unlock()

	if group == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		q.log.Info("Learning queue drained")
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) process(ctx context.Context, worker int, task Task) {
	entry := q.log.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": task.UserID,
		"worker":  worker,
	})

	var err error
	attempts := 0
retry:
	for attempts < q.opts.MaxAttempts {
		attempts++
		q.setStatus(Status{ID: task.ID, UserID: task.UserID, State: StateRunning, Attempts: attempts})

		err = task.Run(ctx)
		if err == nil {
			break
		}
		if q.opts.Retryable != nil && !q.opts.Retryable(err) {
			break
		}
		if attempts == q.opts.MaxAttempts {
			break
		}

		entry.WithError(err).WithField("attempt", attempts).Warn("Learning task failed, retrying")
		delay := q.opts.Backoff << (attempts - 1)
		select {
		case <-ctx.Done():
			err = fmt.Errorf("retry abandoned: %w", ctx.Err())
			break retry
		case <-time.After(delay):
		}
	}

	if err != nil {
		q.count("failed")
		q.setStatus(Status{ID: task.ID, UserID: task.UserID, State: StateFailed, Attempts: attempts, Error: err.Error()})
		entry.WithError(err).WithField("attempts", attempts).Error("Learning task failed")
		return
	}
	q.count("succeeded")
	q.setStatus(Status{ID: task.ID, UserID: task.UserID, State: StateSucceeded, Attempts: attempts})
	entry.WithField("attempts", attempts).Debug("Learning task completed")
}

func (q *Queue) setStatus(s Status) {
	s.Updated = time.Now().UTC()
	q.statuses.Set(s.ID, s, cache.DefaultExpiration)
}

func (q *Queue) count(outcome string) {
	if q.metrics != nil {
		q.metrics.QueueTasks.WithLabelValues(outcome).Inc()
	}
}

func (q *Queue) observeDepth() {
	if q.metrics != nil {
		q.metrics.QueueDepth.Set(float64(len(q.tasks)))
	}
}
