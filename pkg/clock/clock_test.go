package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstantNowAdvances(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := NewInstant(base)

	first := clk.Now()
	second := clk.Now()

	assert.True(t, first.After(base))
	assert.True(t, second.After(first))
}

func TestInstantSleepReturnsImmediately(t *testing.T) {
	clk := NewInstant(time.Now())

	start := time.Now()
	clk.Sleep(context.Background(), time.Hour)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRealSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	Real{}.Sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
