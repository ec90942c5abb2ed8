package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/policyswarm/agent"
	agentctx "github.com/BaSui01/policyswarm/agent/context"
	"github.com/BaSui01/policyswarm/agent/evaluation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/agent/handoff"
	"github.com/BaSui01/policyswarm/agent/memory"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/BaSui01/policyswarm/agent/conversation"

// DefaultInitialMessage 是对话的种子消息
const DefaultInitialMessage = "Develop an optimal political framework to maximize societal evolution in economy, fairness, " +
	"equality, and technological progress. Collaborate with other agents, propose ideas, and evaluate them. " +
	"Consider the long-term effects of political leanings on these aspects."

// State 引擎状态
type State string

const (
	StateIdle       State = "idle"
	StateActive     State = "active"
	StateEvaluating State = "evaluating"
	StateTerminated State = "terminated"
)

// Termination 终止原因
type Termination string

const (
	TerminationBudgetExhausted Termination = "budgetExhausted"
	TerminationFatalError      Termination = "fatalError"
	TerminationCancelled       Termination = "cancelled"
)

// Config 引擎配置
type Config struct {
	RunID               string                `json:"run_id" yaml:"run_id"`
	TotalTurns          int                   `json:"total_turns" yaml:"total_turns"`
	MaxHandoffDepth     int                   `json:"max_handoff_depth" yaml:"max_handoff_depth"`
	InitialMessage      string                `json:"initial_message" yaml:"initial_message"`
	FlushPartialWindows bool                  `json:"flush_partial_windows" yaml:"flush_partial_windows"`
	Window              agentctx.WindowConfig `json:"window" yaml:"window"`
	Evaluator           agent.ModelConfig     `json:"evaluator" yaml:"evaluator"`
	Summarizer          agent.ModelConfig     `json:"summarizer" yaml:"summarizer"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		TotalTurns:      300,
		MaxHandoffDepth: handoff.DefaultMaxDepth,
		InitialMessage:  DefaultInitialMessage,
		Window:          agentctx.DefaultWindowConfig(),
		Evaluator:       agent.DefaultModelConfig(),
		Summarizer:      agent.DefaultModelConfig(),
	}
}

// Status 是引擎当前状态，供监控读取
type Status struct {
	RunID       string      `json:"run_id"`
	State       State       `json:"state"`
	ActiveAgent string      `json:"active_agent,omitempty"`
	Turn        int         `json:"turn"`
	TotalTurns  int         `json:"total_turns"`
	Termination Termination `json:"termination,omitempty"`
}

// RunResult 是一次运行的结果，即使运行失败也会返回
type RunResult struct {
	RunID          string             `json:"run_id"`
	TotalTurns     int                `json:"total_turns"`
	TurnsCompleted int                `json:"turns_completed"`
	Termination    Termination        `json:"termination"`
	Err            error              `json:"-"`
	LeaningHistory []float64          `json:"leaning_history"`
	Final          framework.Snapshot `json:"final"`
	FinalSummary   types.Summary      `json:"final_summary"`
	Summaries      []types.Summary    `json:"summaries"`
	StartedAt      time.Time          `json:"started_at"`
	EndedAt        time.Time          `json:"ended_at"`
}

// Option 配置引擎
type Option func(*Engine)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSummaryLog 设置摘要审计日志
func WithSummaryLog(log memory.SummaryLog) Option {
	return func(e *Engine) { e.summaryLog = log }
}

// WithTokenCounter 设置活动窗口的 token 计数器
func WithTokenCounter(counter agentctx.TokenCounter) Option {
	return func(e *Engine) { e.counter = counter }
}

// WithObserver 注册回合观察者，可多次调用
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithTracer 设置 tracer，默认使用全局 TracerProvider
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// Engine 驱动回合循环。Run 只能调用一次。
type Engine struct {
	config     Config
	registry   *agent.Registry
	provider   llm.Provider
	summaryLog memory.SummaryLog
	counter    agentctx.TokenCounter
	observers  []Observer
	tracer     trace.Tracer
	logger     *zap.Logger

	shared    *framework.SharedContext
	window    *agentctx.Window
	evaluator *evaluation.Evaluator
	hierarchy *memory.Hierarchy

	mu      sync.RWMutex
	status  Status
	leaning []float64
	started bool
}

// NewEngine 创建引擎
func NewEngine(registry *agent.Registry, provider llm.Provider, config Config, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, types.NewConfigurationError("agent registry is required")
	}
	if provider == nil {
		return nil, types.NewConfigurationError("completion provider is required")
	}
	if config.TotalTurns < 0 {
		return nil, types.NewConfigurationError("total turns must be >= 0, got %d", config.TotalTurns)
	}
	if config.MaxHandoffDepth < 0 {
		return nil, types.NewConfigurationError("max handoff depth must be >= 0, got %d", config.MaxHandoffDepth)
	}
	if config.Evaluator.Model == "" {
		config.Evaluator = agent.DefaultModelConfig()
	}
	if config.Summarizer.Model == "" {
		config.Summarizer = agent.DefaultModelConfig()
	}
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}

	e := &Engine{
		config:   config,
		registry: registry,
		provider: provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName)
	}
	e.logger = e.logger.With(zap.String("component", "conversation_engine"), zap.String("run_id", config.RunID))

	e.shared = framework.New()
	e.window = agentctx.NewWindow(config.Window, e.counter, e.logger)
	e.evaluator = evaluation.New(provider, config.Evaluator, e.logger)
	e.hierarchy = memory.NewHierarchy(provider, config.Summarizer, e.summaryLog, e.logger)
	e.status = Status{RunID: config.RunID, State: StateIdle, TotalTurns: config.TotalTurns}
	e.leaning = []float64{}
	return e, nil
}

// Shared 返回共享上下文
func (e *Engine) Shared() *framework.SharedContext { return e.shared }

// Snapshot 返回共享上下文的当前快照
func (e *Engine) Snapshot() framework.Snapshot { return e.shared.Snapshot() }

// Hierarchy 返回分层摘要器
func (e *Engine) Hierarchy() *memory.Hierarchy { return e.hierarchy }

// Window 返回活动窗口
func (e *Engine) Window() *agentctx.Window { return e.window }

// Status 返回引擎当前状态
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// LeaningHistory 返回倾向历史副本
func (e *Engine) LeaningHistory() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]float64{}, e.leaning...)
}

func (e *Engine) setState(state State, active string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.State = state
	e.status.ActiveAgent = active
}

// Run 执行全部回合。返回的 RunResult 总是非 nil；
// 角色调用失败或协议违规时 error 非 nil，取消时返回 ctx.Err()。
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil, errors.New("engine already started")
	}
	e.started = true
	e.mu.Unlock()

	ctx = types.WithRunID(ctx, e.config.RunID)
	ctx, span := e.tracer.Start(ctx, "conversation.run",
		trace.WithAttributes(
			attribute.String("run.id", e.config.RunID),
			attribute.Int("run.total_turns", e.config.TotalTurns),
		))
	defer span.End()

	result := &RunResult{
		RunID:      e.config.RunID,
		TotalTurns: e.config.TotalTurns,
		StartedAt:  time.Now(),
	}

	e.logger.Info("run started",
		zap.Int("total_turns", e.config.TotalTurns),
		zap.Int("personas", e.registry.Len()),
		zap.Int("max_handoff_depth", e.config.MaxHandoffDepth))

	if seed := e.config.InitialMessage; seed != "" {
		e.window.Append(types.NewUserMessage(seed))
	}

	result.Termination = TerminationBudgetExhausted
	for turn := 1; turn <= e.config.TotalTurns; turn++ {
		if err := ctx.Err(); err != nil {
			result.Termination, result.Err = TerminationCancelled, err
			break
		}
		if err := e.runTurn(ctx, turn); err != nil {
			if ctx.Err() != nil {
				result.Termination, result.Err = TerminationCancelled, ctx.Err()
			} else {
				result.Termination, result.Err = TerminationFatalError, err
			}
			break
		}
		result.TurnsCompleted = turn
	}

	e.mu.Lock()
	e.status.State = StateTerminated
	e.status.ActiveAgent = ""
	e.status.Termination = result.Termination
	e.mu.Unlock()

	e.finish(ctx, result)
	result.EndedAt = time.Now()

	span.SetAttributes(
		attribute.Int("run.turns_completed", result.TurnsCompleted),
		attribute.String("run.termination", string(result.Termination)),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
		e.logger.Error("run terminated",
			zap.String("termination", string(result.Termination)),
			zap.Int("turns_completed", result.TurnsCompleted),
			zap.Error(result.Err))
	} else {
		e.logger.Info("run completed", zap.Int("turns_completed", result.TurnsCompleted))
	}
	return result, result.Err
}

// finish 生成最终摘要并填充结果。取消时不再发起补全调用。
func (e *Engine) finish(ctx context.Context, result *RunResult) {
	result.LeaningHistory = e.LeaningHistory()
	result.Final = e.shared.Snapshot()

	if result.Termination == TerminationCancelled {
		result.FinalSummary = types.Summary{
			RunID:     result.RunID,
			Level:     types.SummaryLevelFinal,
			Turn:      result.TurnsCompleted,
			CreatedAt: time.Now(),
		}
	} else {
		result.FinalSummary, _ = e.hierarchy.Finish(ctx, result.TurnsCompleted, e.config.FlushPartialWindows)
	}
	result.Summaries = e.hierarchy.Summaries()
}

// runTurn 执行一个外部回合：角色链、窗口维护、显式评估与摘要
func (e *Engine) runTurn(ctx context.Context, turn int) error {
	start := time.Now()
	ctx = types.WithTurn(ctx, turn)
	ctx, span := e.tracer.Start(ctx, "conversation.turn", trace.WithAttributes(attribute.Int("turn", turn)))
	defer span.End()

	e.mu.Lock()
	e.status.Turn = turn
	e.mu.Unlock()

	out, err := e.runAgents(ctx, turn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("turn.speaker", out.speaker))

	e.window.Append(out.messages...)
	e.window.Trim()
	e.hierarchy.Record(out.final)

	e.setState(StateEvaluating, e.registry.Evaluator().Name())
	status := e.evaluate(ctx, "turn")
	snap := e.shared.Snapshot()
	e.mu.Lock()
	e.leaning = append(e.leaning, snap.Leaning)
	e.mu.Unlock()

	summaries := e.hierarchy.MaybeSummarize(ctx, turn)
	e.setState(StateActive, e.registry.Root().Name())

	e.logger.Info("turn completed",
		zap.Int("turn", turn),
		zap.String("speaker", out.speaker),
		zap.Int("handoffs", len(out.handoffs)),
		zap.String("evaluation", string(status)),
		zap.String("proposals", snap.Proposals),
		zap.String("decisions", snap.Decisions),
		zap.Any("metrics", snap.Metrics),
		zap.Float64("political_leaning", snap.Leaning))

	event := TurnEvent{
		RunID:      e.config.RunID,
		Turn:       turn,
		TotalTurns: e.config.TotalTurns,
		Speaker:    out.speaker,
		Message:    out.final,
		Handoffs:   out.handoffs,
		Evaluation: status,
		Snapshot:   snap,
		Summaries:  summaries,
		Duration:   time.Since(start),
	}
	for _, o := range e.observers {
		o.OnTurn(event)
	}
	return nil
}

// evaluate 评估当前框架并在成功时写回共享上下文，失败只降级
func (e *Engine) evaluate(ctx context.Context, trigger string) evaluation.Status {
	snap := e.shared.Snapshot()
	out, err := e.evaluator.Evaluate(ctx, snap.Proposals, snap.Decisions, snap.Leaning)
	if err != nil {
		e.logger.Warn("evaluation failed, keeping previous metrics",
			zap.String("trigger", trigger),
			zap.Error(err))
		return out.Status
	}
	evaluation.Apply(e.shared, out)
	return out.Status
}
