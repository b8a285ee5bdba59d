package uploader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), "test op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	}, fastRetryConfig(5))

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), "test op", func() error {
		attempts++
		return errors.New("AccessDenied: no permission")
	}, fastRetryConfig(5))

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), "test op", func() error {
		attempts++
		return errors.New("SlowDown: too fast")
	}, fastRetryConfig(2))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, "test op", func() error {
		return errors.New("should not run")
	}, fastRetryConfig(2))

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	rc := NewRetryConfig(3)

	assert.True(t, rc.IsRetryable(errors.New("SlowDown: reduce request rate")))
	assert.True(t, rc.IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, rc.IsRetryable(errors.New("request timeout")))
	assert.False(t, rc.IsRetryable(errors.New("AccessDenied")))
	assert.False(t, rc.IsRetryable(nil))
	assert.False(t, rc.IsRetryable(context.Canceled))
}
