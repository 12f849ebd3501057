package session

import (
	"context"
	"time"
)

// Backoff computes the pause before the given retry attempt.
// Attempts are numbered from 1; the backoff for attempt n is applied
// after attempt n failed and before attempt n+1 starts.
type Backoff func(attempt int) time.Duration

// Constant returns a Backoff that always pauses for d.
// Interaction faults here are render races resolving within tens to
// hundreds of milliseconds, so a short constant pause beats exponential
// growth.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Do runs fn up to attempts times, pausing per backoff between failed
// attempts. It returns nil as soon as fn succeeds, the context error if
// the context is cancelled while pausing, and otherwise the error of the
// final attempt.
func Do(ctx context.Context, attempts int, backoff Backoff, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	return err
}
