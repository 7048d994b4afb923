package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), Policy{
		Attempts:       3,
		InitialBackoff: time.Millisecond,
		OnRetry:        func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) },
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 2, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		return errors.New("dial refused")
	})

	assert.EqualError(t, err, "dial refused")
	assert.Equal(t, 2, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{}, func(context.Context) error {
		calls++
		return errors.New("x")
	})
	assert.Equal(t, 1, calls)
}

func TestDo_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, InitialBackoff: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_WaitStartsAtInitialBackoff(t *testing.T) {
	var waits []time.Duration
	_ = Do(context.Background(), Policy{
		Attempts:       3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		OnRetry:        func(_ int, _ error, wait time.Duration) { waits = append(waits, wait) },
	}, func(context.Context) error {
		return errors.New("down")
	})

	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, waits)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 5, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		return backoff.Permanent(errors.New("bad dsn"))
	})

	assert.EqualError(t, err, "bad dsn")
	assert.Equal(t, 1, calls)
}
