package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/policyswarm/types"
)

// State 是熔断器所处阶段：closed 放行，open 拒绝，half_open 放行有限的试探调用
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{"closed", "open", "half_open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

var (
	ErrCircuitOpen            = errors.New("circuit breaker is open")
	ErrTooManyCallsInHalfOpen = errors.New("too many calls in half-open state")
)

type Config struct {
	// Threshold 是触发熔断的连续失败次数，<= 0 关闭熔断
	Threshold int
	// ResetTimeout 是 open 之后进入 half_open 前的等待时间
	ResetTimeout     time.Duration
	HalfOpenMaxCalls int
	// OnStateChange 在释放锁之后同步调用
	OnStateChange func(from, to State)
}

func DefaultConfig() Config {
	return Config{Threshold: 5, ResetTimeout: time.Minute, HalfOpenMaxCalls: 1}
}

// Breaker 保护补全调用。只有可重试错误与超时计入失败，
// 鉴权失败、无效请求等客户端错误不会让它打开。
type Breaker struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trials   int // half_open 下在途的试探调用
}

func New(cfg Config, logger *zap.Logger) *Breaker {
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = time.Minute
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "circuit_breaker")),
		now:    time.Now,
	}
}

func (b *Breaker) Enabled() bool { return b.cfg.Threshold > 0 }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Call 在熔断器允许时执行 fn。nil 或未启用的熔断器直接执行。
func Call[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil || !b.Enabled() {
		return fn()
	}
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := b.admit(); err != nil {
		return zero, err
	}

	v, err := fn()
	switch {
	case errors.Is(err, context.Canceled):
		// 调用方取消，不计成功也不计失败
		b.abandon()
	case err != nil && countsAsFailure(err):
		b.settle(false)
	default:
		b.settle(true)
	}
	return v, err
}

func countsAsFailure(err error) bool {
	return types.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded)
}

// moveLocked 切换状态并返回需要在解锁后执行的通知
func (b *Breaker) moveLocked(to State) func() {
	from := b.state
	if from == to {
		return func() {}
	}
	b.state = to
	b.trials = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	failures := b.failures
	return func() {
		fields := []zap.Field{zap.Stringer("from", from), zap.Stringer("to", to)}
		if to == StateOpen {
			b.logger.Warn("circuit breaker opened", append(fields,
				zap.Int("consecutive_failures", failures),
				zap.Duration("reset_timeout", b.cfg.ResetTimeout))...)
		} else {
			b.logger.Info("circuit breaker state changed", fields...)
		}
		if b.cfg.OnStateChange != nil {
			b.cfg.OnStateChange(from, to)
		}
	}
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	notify := func() {}
	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.ResetTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		notify = b.moveLocked(StateHalfOpen)
	}
	if b.state == StateHalfOpen {
		if b.trials >= b.cfg.HalfOpenMaxCalls {
			b.mu.Unlock()
			notify()
			return ErrTooManyCallsInHalfOpen
		}
		b.trials++
	}
	b.mu.Unlock()
	notify()
	return nil
}

func (b *Breaker) abandon() {
	b.mu.Lock()
	if b.state == StateHalfOpen && b.trials > 0 {
		b.trials--
	}
	b.mu.Unlock()
}

func (b *Breaker) settle(success bool) {
	b.mu.Lock()
	notify := func() {}
	switch {
	case success:
		b.failures = 0
		if b.state == StateHalfOpen {
			notify = b.moveLocked(StateClosed)
		}
	default:
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.cfg.Threshold {
			notify = b.moveLocked(StateOpen)
		}
	}
	b.mu.Unlock()
	notify()
}
