package infra_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spoken-answer/internal/infra"
)

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	testCases := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first time", failures: 0, wantCalls: 1},
		{name: "succeeds after retries", failures: 2, err: errTransient, wantCalls: 3},
		{name: "gives up", failures: 5, err: errTransient, wantCalls: 3, wantErr: errTransient},
		{name: "permanent stops immediately", failures: 5, err: infra.Permanent(errFatal), wantCalls: 1, wantErr: errFatal},
		{name: "context errors are not retried", failures: 5, err: context.DeadlineExceeded, wantCalls: 1, wantErr: context.DeadlineExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := infra.WithRetry(context.Background(), fastRetry(), func() error {
				calls++
				if calls <= tc.failures {
					return tc.err
				}
				return nil
			})

			require.Equal(t, tc.wantCalls, calls)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestWithRetry_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastRetry()
	cfg.InitialDelay = time.Hour

	err := infra.WithRetry(ctx, cfg, func() error {
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	require.True(t, infra.IsRetryableHTTPStatus(http.StatusTooManyRequests))
	require.True(t, infra.IsRetryableHTTPStatus(http.StatusBadGateway))
	require.False(t, infra.IsRetryableHTTPStatus(http.StatusBadRequest))
	require.False(t, infra.IsRetryableHTTPStatus(http.StatusUnauthorized))
}
