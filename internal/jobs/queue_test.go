package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/metrics"
)

func quietLog() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestQueue_RunsTasks(t *testing.T) {
	q := NewQueue(Options{Workers: 3, Size: 10}, quietLog(), nil)
	q.Start(context.Background())

	var ran atomic.Int32
	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id, err := q.Submit(Task{UserID: "u1", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, int32(10), ran.Load())
	for _, id := range ids {
		status, ok := q.Status(id)
		require.True(t, ok)
		assert.Equal(t, StateSucceeded, status.State)
		assert.Equal(t, 1, status.Attempts)
	}
}

func TestQueue_SubmitNeverBlocks(t *testing.T) {
	m := metrics.New()
	q := NewQueue(Options{Workers: 1, Size: 2}, quietLog(), m)
	noop := func(context.Context) error { return nil }

	// not started, so the buffer fills
	_, err := q.Submit(Task{Run: noop})
	require.NoError(t, err)
	_, err = q.Submit(Task{Run: noop})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := q.Submit(Task{Run: noop})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	assert.Equal(t, 2, q.Len())
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	q := NewQueue(Options{Workers: 1, Size: 1, MaxAttempts: 3, Backoff: time.Millisecond}, quietLog(), nil)
	q.Start(context.Background())

	var calls atomic.Int32
	id, err := q.Submit(Task{UserID: "u1", Run: func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}})
	require.NoError(t, err)
	require.NoError(t, q.Stop(context.Background()))

	status, ok := q.Status(id)
	require.True(t, ok)
	assert.Equal(t, StateSucceeded, status.State)
	assert.Equal(t, 3, status.Attempts)
}

func TestQueue_FailureIsRecorded(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := metrics.New()
	q := NewQueue(Options{Workers: 1, Size: 1, MaxAttempts: 2, Backoff: time.Millisecond}, logrus.NewEntry(logger), m)
	q.Start(context.Background())

	id, err := q.Submit(Task{UserID: "u1", Run: func(context.Context) error {
		return errors.New("store unavailable")
	}})
	require.NoError(t, err)
	require.NoError(t, q.Stop(context.Background()))

	status, ok := q.Status(id)
	require.True(t, ok)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, 2, status.Attempts)
	assert.Equal(t, "store unavailable", status.Error)

	var errorLogged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["task_id"] == id {
			errorLogged = true
		}
	}
	assert.True(t, errorLogged)
}

func TestQueue_NonRetryableStopsEarly(t *testing.T) {
	permanent := errors.New("too short")
	q := NewQueue(Options{
		Workers:     1,
		Size:        1,
		MaxAttempts: 5,
		Backoff:     time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}, quietLog(), nil)
	q.Start(context.Background())

	var calls atomic.Int32
	id, err := q.Submit(Task{Run: func(context.Context) error {
		calls.Add(1)
		return permanent
	}})
	require.NoError(t, err)
	require.NoError(t, q.Stop(context.Background()))

	assert.Equal(t, int32(1), calls.Load())
	status, _ := q.Status(id)
	assert.Equal(t, StateFailed, status.State)
}

func TestQueue_SubmitAfterStop(t *testing.T) {
	q := NewQueue(Options{}, quietLog(), nil)
	q.Start(context.Background())
	require.NoError(t, q.Stop(context.Background()))
	require.NoError(t, q.Stop(context.Background()))

	_, err := q.Submit(Task{Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_StopDeadlineCancelsInFlight(t *testing.T) {
	q := NewQueue(Options{Workers: 1, Size: 1}, quietLog(), nil)
	q.Start(context.Background())

	started := make(chan struct{})
	_, err := q.Submit(Task{Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Stop(ctx), context.DeadlineExceeded)
}

func TestQueue_RejectsEmptyTask(t *testing.T) {
	q := NewQueue(Options{}, quietLog(), nil)
	_, err := q.Submit(Task{})
	assert.Error(t, err)
}
