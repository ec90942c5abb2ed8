// Package retry 提供补全调用的指数退避重试。
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// Policy 描述一次补全调用失败后的退避方式。零值字段取 DefaultPolicy 的对应值。
type Policy struct {
	MaxRetries   int // 首次调用之外的次数，负数按 0
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64 // < 1 时按 2
	Jitter       bool    // ±25%
	// ShouldRetry 为空时使用 types.IsRetryable
	ShouldRetry func(err error) bool
	OnRetry     func(attempt int, err error, delay time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       true,
		ShouldRetry:  types.IsRetryable,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	p.MaxRetries = max(p.MaxRetries, 0)
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = def.ShouldRetry
	}
	return p
}

// Retryer 按 Policy 重复调用，直到成功、遇到不可重试的错误或次数用尽
type Retryer struct {
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(policy Policy, logger *zap.Logger) *Retryer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retryer{
		policy: policy.withDefaults(),
		logger: logger.With(zap.String("component", "retry")),
		sleep:  sleepCtx,
	}
}

func (r *Retryer) Do(ctx context.Context, fn func() error) error {
	_, err := Do(ctx, r, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Do 是带返回值的 Retryer.Do。不可重试的错误原样返回，调用方可以 errors.As。
func Do[T any](ctx context.Context, r *Retryer, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.delay(attempt)
			r.logger.Debug("retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", r.policy.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if r.policy.OnRetry != nil {
				r.policy.OnRetry(attempt, lastErr, delay)
			}
			if err := r.sleep(ctx, delay); err != nil {
				return zero, fmt.Errorf("retry cancelled: %w", err)
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !r.policy.ShouldRetry(err) {
			return zero, err
		}
	}

	r.logger.Warn("retries exhausted",
		zap.Int("attempts", r.policy.MaxRetries+1),
		zap.Error(lastErr),
	)
	return zero, lastErr
}

// delay 落在 [InitialDelay, MaxDelay*1.25] 内
func (r *Retryer) delay(attempt int) time.Duration {
	p := r.policy
	d := min(float64(p.InitialDelay)*math.Pow(p.Multiplier, float64(attempt-1)), float64(p.MaxDelay))
	if p.Jitter {
		d += (rand.Float64()*2 - 1) * d * 0.25
	}
	return time.Duration(max(d, float64(p.InitialDelay)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
