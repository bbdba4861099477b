package retry

import (
	"context"
	"time"
)

// Sleeper suspends the caller between retry attempts. The system
// implementation blocks the calling goroutine; tests substitute a recording
// fake so retry loops run instantly.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemSleeper struct{}

// SystemSleeper returns a Sleeper backed by the runtime timer. Sleep returns
// early with the context's error if the context is cancelled first.
func SystemSleeper() Sleeper {
	return systemSleeper{}
}

func (systemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
