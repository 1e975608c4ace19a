package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	attempts := 0
	result, err := newTestClient(3).ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	_, err := newTestClient(3).ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("rpc error: code = NotFound desc = no job found")
	}, "complete-job")

	assert.ErrorIs(t, err, ErrBrokerRejected)
	assert.Equal(t, 1, attempts)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	_, err := newTestClient(2).ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("context deadline exceeded")
	}, "topology")

	assert.ErrorIs(t, err, ErrBrokerTimeout)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("unavailable")
	}, "topology")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteWithRetry_SingleAttempt(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: SingleAttempt}}

	attempts := 0
	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
	}, "topology")

	assert.ErrorIs(t, err, ErrBrokerUnavailable)
	assert.NotContains(t, err.Error(), "attempts")
	assert.Equal(t, 1, attempts)
}

func TestLocalConfig(t *testing.T) {
	cfg := LocalConfig("localhost:26500")

	assert.Equal(t, "localhost:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 10*time.Second, cfg.ConnectionTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 2*time.Second, backoff(cfg, 1))
	assert.Equal(t, 4*time.Second, backoff(cfg, 2))
	assert.Equal(t, 5*time.Second, backoff(cfg, 3))
}

func TestMapZeebeError(t *testing.T) {
	assert.ErrorIs(t, mapZeebeError(errors.New("connection reset by peer"), "op", 0), ErrBrokerUnavailable)
	assert.ErrorIs(t, mapZeebeError(errors.New("i/o timeout"), "op", 0), ErrBrokerTimeout)
	assert.ErrorIs(t, mapZeebeError(errors.New("permission denied"), "op", 0), ErrBrokerRejected)
}
