// Package clock provides time abstractions for production and testing
package clock

import (
	"context"
	"time"
)

// SystemClock provides production time implementation using the standard library
type SystemClock struct{}

// After returns a channel that sends the current time after the specified duration
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Now returns the current time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Waiter is the part of a clock Sleep needs
type Waiter interface {
	After(d time.Duration) <-chan time.Time
}

// Sleep blocks for d on the given clock or until ctx is done, whichever comes first
func Sleep(ctx context.Context, c Waiter, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}
