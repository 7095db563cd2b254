package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/internal/resilience"
)

var errTool = errors.New("ruff: exit status 2")

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func trip(b *resilience.Breaker, n int) {
	for range n {
		_ = b.Execute(func() error { return errTool })
	}
}

func TestBreakerClosedRunsCalls(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(3, time.Second)
	called := false

	err := b.Execute(func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, resilience.StateClosed, b.State())
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(3, time.Minute)
	trip(b, 3)

	err := b.Execute(func() error { return nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, resilience.StateOpen, b.State())
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Unix(0, 0)}
	b := resilience.NewBreaker(2, time.Second, resilience.WithClock(clk.Now))
	trip(b, 2)
	require.ErrorIs(t, b.Execute(func() error { return nil }), resilience.ErrCircuitOpen)

	clk.now = clk.now.Add(2 * time.Second)
	assert.Equal(t, resilience.StateHalfOpen, b.State())

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, resilience.StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Unix(0, 0)}
	b := resilience.NewBreaker(2, time.Second, resilience.WithClock(clk.Now))
	trip(b, 2)
	clk.now = clk.now.Add(2 * time.Second)

	err := b.Execute(func() error { return errTool })
	require.ErrorIs(t, err, errTool)
	assert.Equal(t, resilience.StateOpen, b.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(1, time.Minute)
	for range 5 {
		err := b.Execute(func() error { return fmt.Errorf("ruff: %w", context.Canceled) })
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, resilience.StateClosed, b.State())

	err := b.Execute(func() error { return context.DeadlineExceeded })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, resilience.StateOpen, b.State())
}

func TestBreakerDisabled(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(0, time.Minute)
	trip(b, 10)
	require.NoError(t, b.Execute(func() error { return nil }))

	var nilBreaker *resilience.Breaker
	require.NoError(t, nilBreaker.Execute(func() error { return nil }))
	assert.Equal(t, resilience.StateClosed, nilBreaker.State())
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(2, time.Minute)
	trip(b, 1)
	require.NoError(t, b.Execute(func() error { return nil }))
	trip(b, 1)

	assert.Equal(t, resilience.StateClosed, b.State())
}
