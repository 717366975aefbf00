package session

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the latter
// case. Loops take one as a parameter so tests can substitute a fake clock.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
