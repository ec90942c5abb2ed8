package llm

import (
	"context"
	"time"

	"github.com/BaSui01/policyswarm/llm/circuitbreaker"
	"github.com/BaSui01/policyswarm/llm/retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CompletionObserver 接收每次补全调用的结果（由 metrics 层实现）。
// ctx 携带调用阶段（persona/evaluation/summary）。
type CompletionObserver interface {
	ObserveCompletion(ctx context.Context, provider, model string, latency time.Duration, usage ChatUsage, err error)
}

// ResilientProvider 具有弹性能力的 Provider 包装器
// 提供熔断、重试与本地限流，遵循装饰器模式：增强原有 Provider 而不修改其代码
type ResilientProvider struct {
	provider Provider
	retryer  *retry.Retryer
	breaker  *circuitbreaker.Breaker
	limiter  *rate.Limiter
	observer CompletionObserver
	logger   *zap.Logger
}

// ResilientProviderConfig 弹性 Provider 配置
type ResilientProviderConfig struct {
	// RetryPolicy 重试策略，MaxRetries 为 0 时不重试
	RetryPolicy retry.Policy
	// RequestsPerSecond 本地限流速率，<= 0 表示不限流
	RequestsPerSecond float64
	// Burst 限流突发容量
	Burst int
	// Breaker 熔断配置，Threshold 为 0 时不熔断
	Breaker circuitbreaker.Config
}

// DefaultResilientProviderConfig 返回默认配置
func DefaultResilientProviderConfig() ResilientProviderConfig {
	return ResilientProviderConfig{
		RetryPolicy:       retry.DefaultPolicy(),
		RequestsPerSecond: 0,
		Burst:             1,
		Breaker:           circuitbreaker.DefaultConfig(),
	}
}

// NewResilientProvider 创建具有弹性能力的 Provider
func NewResilientProvider(provider Provider, cfg ResilientProviderConfig, observer CompletionObserver, logger *zap.Logger) *ResilientProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &ResilientProvider{
		provider: provider,
		retryer:  retry.New(cfg.RetryPolicy, logger),
		breaker:  circuitbreaker.New(cfg.Breaker, logger),
		limiter:  limiter,
		observer: observer,
		logger:   logger.With(zap.String("component", "resilient_provider")),
	}
}

// Completion 实现 Provider.Completion
// 每次尝试前等待限流令牌；只有可重试错误才会重试。
// 重试耗尽算一次失败，连续失败达到阈值后熔断。
func (rp *ResilientProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return circuitbreaker.Call(ctx, rp.breaker, func() (*ChatResponse, error) {
		return rp.complete(ctx, req)
	})
}

func (rp *ResilientProvider) complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return retry.Do(ctx, rp.retryer, func() (*ChatResponse, error) {
		if rp.limiter != nil {
			if err := rp.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		start := time.Now()
		resp, err := rp.provider.Completion(ctx, req)
		if rp.observer != nil {
			model := req.Model
			var usage ChatUsage
			if resp != nil {
				model = resp.Model
				usage = resp.Usage
			}
			rp.observer.ObserveCompletion(ctx, rp.provider.Name(), model, time.Since(start), usage, err)
		}
		return resp, err
	})
}

// BreakerState 返回熔断器状态
func (rp *ResilientProvider) BreakerState() circuitbreaker.State {
	return rp.breaker.State()
}

// Name 实现 Provider.Name
func (rp *ResilientProvider) Name() string {
	return rp.provider.Name()
}
