package topics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDescribe returns the given statuses in order, repeating the last one.
func scriptedDescribe(statuses ...*JobStatus) DescribeFunc {
	i := 0
	return func(_ context.Context) (*JobStatus, error) {
		st := statuses[min(i, len(statuses)-1)]
		i++
		return st, nil
	}
}

func TestPoller_CompletesImmediately(t *testing.T) {
	poller := &Poller{
		Clock:       clockwork.NewFakeClock(),
		Interval:    30 * time.Second,
		MaxAttempts: 10,
	}

	status, err := poller.Wait(context.Background(), "job-1", scriptedDescribe(
		&JobStatus{JobID: "job-1", Status: StatusCompleted, OutputS3URI: "s3://b/out.tar.gz"},
	))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, "s3://b/out.tar.gz", status.OutputS3URI)
}

func TestPoller_CompletesAfterProgress(t *testing.T) {
	clock := clockwork.NewFakeClock()
	poller := &Poller{Clock: clock, Interval: 30 * time.Second, MaxAttempts: 10}

	describe := scriptedDescribe(
		&JobStatus{JobID: "job-1", Status: StatusSubmitted},
		&JobStatus{JobID: "job-1", Status: StatusInProgress},
		&JobStatus{JobID: "job-1", Status: StatusCompleted},
	)

	type result struct {
		status *JobStatus
		err    error
	}
	done := make(chan result, 1)
	go func() {
		st, err := poller.Wait(context.Background(), "job-1", describe)
		done <- result{st, err}
	}()

	for i := 0; i < 2; i++ {
		clock.BlockUntil(1)
		clock.Advance(30 * time.Second)
	}

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, StatusCompleted, res.status.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestPoller_RetriesTransientDescribeError(t *testing.T) {
	poller := &Poller{
		Clock:       clockwork.NewFakeClock(),
		Interval:    30 * time.Second,
		MaxAttempts: 10,
	}

	calls := 0
	describe := func(_ context.Context) (*JobStatus, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("throttled")
		}
		return &JobStatus{JobID: "job-1", Status: StatusCompleted}, nil
	}

	status, err := poller.Wait(context.Background(), "job-1", describe)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, 2, calls)
}

func TestPoller_PersistentDescribeError(t *testing.T) {
	poller := &Poller{
		Clock:       clockwork.NewFakeClock(),
		Interval:    30 * time.Second,
		MaxAttempts: 10,
	}

	calls := 0
	describe := func(_ context.Context) (*JobStatus, error) {
		calls++
		return nil, errors.New("throttled")
	}

	_, err := poller.Wait(context.Background(), "job-1", describe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, describeRetries, calls)
}

func TestPoller_JobFailed(t *testing.T) {
	poller := &Poller{
		Clock:       clockwork.NewFakeClock(),
		Interval:    30 * time.Second,
		MaxAttempts: 10,
	}

	_, err := poller.Wait(context.Background(), "job-1", scriptedDescribe(
		&JobStatus{JobID: "job-1", Status: StatusFailed, Message: "NO_READ_ACCESS_TO_INPUT"},
	))
	require.Error(t, err)

	var failedErr *JobFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Equal(t, StatusFailed, failedErr.Status)
	assert.Contains(t, failedErr.Error(), "NO_READ_ACCESS_TO_INPUT")
}

func TestPoller_Timeout(t *testing.T) {
	poller := &Poller{
		Clock:       clockwork.NewFakeClock(),
		Interval:    time.Second,
		MaxAttempts: 1,
	}

	_, err := poller.Wait(context.Background(), "job-1", scriptedDescribe(
		&JobStatus{JobID: "job-1", Status: StatusInProgress},
	))
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "job-1", timeoutErr.JobID)
	assert.Equal(t, 1, timeoutErr.Attempts)
	assert.Equal(t, StatusInProgress, timeoutErr.LastStatus)
}

func TestPoller_ContextCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	poller := &Poller{Clock: clock, Interval: time.Minute, MaxAttempts: 10}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := poller.Wait(ctx, "job-1", scriptedDescribe(
			&JobStatus{JobID: "job-1", Status: StatusInProgress},
		))
		done <- err
	}()

	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusStopped.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}
