package ratelimit

import (
	"context"
	"time"
)

// Limiter paces a loop to a target rate.
type Limiter struct {
	next time.Time
}

func New() *Limiter {
	return &Limiter{}
}

// Wait blocks until the next tick for a cap of limit iterations per second.
// A limit of zero or less disables pacing. It sleeps most of the interval
// and spins the final stretch for precision at high caps.
func (l *Limiter) Wait(ctx context.Context, limit int) error {
	if limit <= 0 {
		l.next = time.Time{}
		return nil
	}
	target := time.Second / time.Duration(limit)

	if l.next.IsZero() {
		l.next = time.Now().Add(target)
	} else {
		l.next = l.next.Add(target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			t := time.NewTimer(remaining - 200*time.Microsecond)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return context.Cause(ctx)
			}
		}
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// Resync after a hitch instead of bursting to catch up.
	if late := -time.Until(l.next); late > target {
		l.next = time.Now().Add(target)
	}
	return nil
}
