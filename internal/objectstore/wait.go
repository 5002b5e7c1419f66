package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// WaitTimeoutError reports that an object did not appear within the polling
// budget.
type WaitTimeoutError struct {
	Key      string
	Attempts int
	Interval time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("object %s did not appear after %d checks (%s apart)",
		e.Key, e.Attempts, e.Interval)
}

// WaitConfig bounds an object-existence poll.
type WaitConfig struct {
	Clock       clockwork.Clock
	Interval    time.Duration
	MaxAttempts int
}

// WaitForKey polls until an object exists at key, up to MaxAttempts checks
// with a fixed interval between them. It returns a *WaitTimeoutError when the
// budget is exhausted.
func (s *Store) WaitForKey(ctx context.Context, key string, cfg WaitConfig) error {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		ok, err := s.Exists(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(cfg.Interval):
		}
	}

	return &WaitTimeoutError{Key: key, Attempts: cfg.MaxAttempts, Interval: cfg.Interval}
}
