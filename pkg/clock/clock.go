package clock

import (
	"context"
	"sync/atomic"
	"time"
)

// Clock abstracts wall time and timer waits so code that simulates
// delivery delays can be exercised in tests without real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for the given duration or until the context is done.
	Sleep(ctx context.Context, d time.Duration)
}

// Real is a Clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Instant is a Clock whose sleeps return immediately. Time still moves
// forward a nanosecond per Now call so generated timestamps stay unique.
type Instant struct {
	base  time.Time
	ticks atomic.Int64
}

// NewInstant creates an Instant clock starting at the given time.
func NewInstant(base time.Time) *Instant {
	return &Instant{base: base}
}

func (c *Instant) Now() time.Time {
	return c.base.Add(time.Duration(c.ticks.Add(1)))
}

func (c *Instant) Sleep(ctx context.Context, d time.Duration) {}
