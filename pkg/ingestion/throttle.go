package ingestion

import (
	"context"
	"time"

	"finance-rag-be/pkg/clock"
)

// Throttle counts news-source calls and blocks for cooldown every time the
// count reaches threshold. It is not safe for concurrent use; the pipeline
// issues requests one at a time.
type Throttle struct {
	threshold int
	cooldown  time.Duration
	sleep     clock.SleepFunc
	count     int
	pauses    int
}

func NewThrottle(threshold int, cooldown time.Duration, sleep clock.SleepFunc) *Throttle {
	if sleep == nil {
		sleep = clock.Sleep
	}
	return &Throttle{
		threshold: threshold,
		cooldown:  cooldown,
		sleep:     sleep,
	}
}

// Tick records one call. threshold <= 0 disables throttling.
func (t *Throttle) Tick(ctx context.Context) error {
	if t.threshold <= 0 {
		return nil
	}

	t.count++
	if t.count < t.threshold {
		return nil
	}

	t.count = 0
	t.pauses++
	return t.sleep(ctx, t.cooldown)
}

// Pauses returns how many cooldowns have been taken.
func (t *Throttle) Pauses() int {
	return t.pauses
}
