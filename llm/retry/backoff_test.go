package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BaSui01/policyswarm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

// statusErr 模拟补全层带状态码的错误
type statusErr struct {
	status    int
	retryable bool
}

func (e *statusErr) Error() string     { return "upstream status" }
func (e *statusErr) IsRetryable() bool { return e.retryable }

func retryableErr() error {
	return &statusErr{status: 429, retryable: true}
}

func TestRetryer_Success(t *testing.T) {
	r := New(testPolicy(), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil // 第一次就成功
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryer_RetryAndSuccess(t *testing.T) {
	r := New(testPolicy(), zap.NewNop())

	calls := 0
	got, err := Do(context.Background(), r, func() (string, error) {
		calls++
		if calls < 3 {
			return "", retryableErr()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetryer_NonRetryableStopsImmediately(t *testing.T) {
	r := New(testPolicy(), zap.NewNop())

	calls := 0
	authErr := &statusErr{status: 401}
	err := r.Do(context.Background(), func() error {
		calls++
		return authErr
	})

	assert.Same(t, authErr, err)
	assert.Equal(t, 1, calls)
	assert.False(t, types.IsRetryable(err))
}

func TestRetryer_Exhausted(t *testing.T) {
	var retries []int
	p := testPolicy()
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
	}
	r := New(p, zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return retryableErr()
	})

	require.Error(t, err)
	var se *statusErr
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.status)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []int{1, 2, 3}, retries)
}

func TestRetryer_ContextCancelled(t *testing.T) {
	p := testPolicy()
	p.InitialDelay = time.Hour
	p.MaxDelay = time.Hour
	r := New(p, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func() error { return retryableErr() })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryer_CustomShouldRetry(t *testing.T) {
	p := testPolicy()
	p.MaxRetries = 2
	p.ShouldRetry = func(error) bool { return true }
	r := New(p, nil)

	calls := 0
	_ = r.Do(context.Background(), func() error {
		calls++
		return errors.New("plain")
	})
	assert.Equal(t, 3, calls)
}

func TestRetryer_DelayCappedAtMax(t *testing.T) {
	p := Policy{
		MaxRetries:   10,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     40 * time.Millisecond,
		Multiplier:   2.0,
	}
	r := New(p, nil)

	assert.Equal(t, 10*time.Millisecond, r.delay(1))
	assert.Equal(t, 20*time.Millisecond, r.delay(2))
	assert.Equal(t, 40*time.Millisecond, r.delay(3))
	assert.Equal(t, 40*time.Millisecond, r.delay(8))
}

func TestNew_Defaults(t *testing.T) {
	r := New(Policy{MaxRetries: -1}, nil)
	assert.Equal(t, 0, r.policy.MaxRetries)
	assert.Equal(t, time.Second, r.policy.InitialDelay)
	assert.Equal(t, 2.0, r.policy.Multiplier)
	assert.NotNil(t, r.policy.ShouldRetry)
}

func TestPolicy_WithDefaults(t *testing.T) {
	p := Policy{MaxRetries: -2, Multiplier: 0.5}.withDefaults()

	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 2.0, p.Multiplier)
	require.NotNil(t, p.ShouldRetry)
	assert.True(t, p.ShouldRetry(retryableErr()))
	assert.False(t, p.ShouldRetry(errors.New("plain")))
}
