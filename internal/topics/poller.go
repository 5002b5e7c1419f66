package topics

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
)

// TimeoutError reports that a job did not reach a terminal state within the
// polling budget.
type TimeoutError struct {
	JobID      string
	Attempts   int
	Interval   time.Duration
	LastStatus Status
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s still %s after %d polls (%s apart)",
		e.JobID, e.LastStatus, e.Attempts, e.Interval)
}

// JobFailedError reports that the provider ended a job in a failed or stopped
// state.
type JobFailedError struct {
	JobID   string
	Status  Status
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("job %s ended %s: %s", e.JobID, e.Status, e.Message)
	}
	return fmt.Sprintf("job %s ended %s", e.JobID, e.Status)
}

// DescribeFunc fetches the current status of a job.
type DescribeFunc func(ctx context.Context) (*JobStatus, error)

// describeRetries bounds the transient-error retry around a single poll.
const describeRetries = 3

// Poller waits for a job to finish: up to MaxAttempts status checks with a
// fixed Interval between them. The Clock is injectable so tests drive time.
type Poller struct {
	Clock       clockwork.Clock
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPoller checks every thirty seconds for up to an hour.
func DefaultPoller() *Poller {
	return &Poller{
		Clock:       clockwork.NewRealClock(),
		Interval:    30 * time.Second,
		MaxAttempts: 120,
	}
}

// Wait polls describe until the job completes. It returns the terminal status
// on success, a *JobFailedError if the provider reports failure, and a
// *TimeoutError if the budget runs out first. Transient describe errors are
// retried with exponential backoff before the poll counts as an attempt.
func (p *Poller) Wait(ctx context.Context, jobID string, describe DescribeFunc) (*JobStatus, error) {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	last := StatusUnknown
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		status, err := backoff.Retry(ctx, func() (*JobStatus, error) {
			return describe(ctx)
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(describeRetries))
		if err != nil {
			return nil, fmt.Errorf("polling job %s: %w", jobID, err)
		}

		last = status.Status
		switch {
		case status.Status == StatusCompleted:
			return status, nil
		case status.Status.Terminal():
			return nil, &JobFailedError{JobID: jobID, Status: status.Status, Message: status.Message}
		}

		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-clock.After(p.Interval):
		}
	}

	return nil, &TimeoutError{
		JobID:      jobID,
		Attempts:   p.MaxAttempts,
		Interval:   p.Interval,
		LastStatus: last,
	}
}
