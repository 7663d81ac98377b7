package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
)

func newTestBreaker() *Breaker {
	return New(config.Breaker{
		Threshold:   3,
		OpenTimeout: 20 * time.Millisecond,
		MaxHalfOpen: 1,
	})
}

func TestOpensAfterThresholdFailures(t *testing.T) {
	b := newTestBreaker()
	require.NoError(t, b.Allow())

	b.Failure()
	b.Failure()
	require.Equal(t, Closed, b.State())
	b.Failure()
	require.Equal(t, Open, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpenState)
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	b := newTestBreaker()
	for i := 0; i < 3; i++ {
		b.Failure()
	}
	time.Sleep(25 * time.Millisecond)

	require.NoError(t, b.Allow())
	require.Equal(t, HalfOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpenState)

	b.Success()
	require.Equal(t, Closed, b.State())
	require.NoError(t, b.Allow())
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	b := newTestBreaker()
	for i := 0; i < 3; i++ {
		b.Failure()
	}
	time.Sleep(25 * time.Millisecond)
	require.NoError(t, b.Allow())

	b.Failure()
	require.Equal(t, Open, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpenState)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker()
	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	require.Equal(t, Closed, b.State())
}
