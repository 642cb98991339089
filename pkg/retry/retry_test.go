package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	waits []time.Duration
	err   error
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

func TestPolicyDo(t *testing.T) {
	boom := errors.New("boom")

	t.Run("succeeds first time without sleeping", func(t *testing.T) {
		rec := &sleepRecorder{}
		p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, Sleep: rec.Sleep}

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.waits)
	})

	t.Run("backs off exponentially and returns last error", func(t *testing.T) {
		rec := &sleepRecorder{}
		p := Policy{MaxAttempts: 4, BaseDelay: time.Second, Multiplier: 2, Sleep: rec.Sleep}

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 4, calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, rec.waits)
	})

	t.Run("recovers on a later attempt", func(t *testing.T) {
		rec := &sleepRecorder{}
		p := Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, Multiplier: 2, Sleep: rec.Sleep}

		calls := 0
		got, err := DoValue(context.Background(), p, func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", boom
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Len(t, rec.waits, 2)
	})

	t.Run("non retryable error stops immediately", func(t *testing.T) {
		rec := &sleepRecorder{}
		p := Policy{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			Multiplier:  2,
			Sleep:       rec.Sleep,
			Retryable:   func(err error) bool { return !errors.Is(err, boom) },
		}

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.waits)
	})

	t.Run("interrupted sleep returns the call error", func(t *testing.T) {
		rec := &sleepRecorder{err: context.Canceled}
		p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, Sleep: rec.Sleep}

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still calls once", func(t *testing.T) {
		calls := 0
		err := Policy{}.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
