package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/agent/conversation"
	agentctx "github.com/BaSui01/policyswarm/agent/context"
	"github.com/BaSui01/policyswarm/agent/persistence"
	"github.com/BaSui01/policyswarm/config"
	"github.com/BaSui01/policyswarm/internal/database"
	"github.com/BaSui01/policyswarm/internal/metrics"
	"github.com/BaSui01/policyswarm/internal/server"
	"github.com/BaSui01/policyswarm/internal/telemetry"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/llm/factory"
	"github.com/BaSui01/policyswarm/llm/tokenizer"
)

// app 持有一次运行所需的全部组件
type app struct {
	runID      string
	cfg        *config.Config
	logger     *zap.Logger
	collector  *metrics.Collector
	telemetry  *telemetry.Providers
	provider   llm.Provider
	registry   *agent.Registry
	summaryLog persistence.SummaryLog
	pool       *database.Pool
	hub        *server.Hub
	monitor    *server.Monitor
}

// modelConfig 把 LLM 配置转换为角色模型配置
func modelConfig(cfg config.LLMConfig) agent.ModelConfig {
	return agent.ModelConfig{
		Model:       cfg.Model,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
	}
}

// loadPersonas 读取角色文件，未配置时使用内置目录
func loadPersonas(cfg config.RunConfig) ([]agent.Definition, error) {
	if cfg.PersonasFile == "" {
		return agent.BuiltinPersonas(), nil
	}
	return agent.LoadDefinitions(cfg.PersonasFile)
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) (*agent.Registry, error) {
	defs, err := loadPersonas(cfg.Run)
	if err != nil {
		return nil, err
	}
	return agent.NewRegistry(defs,
		agent.WithModelConfig(modelConfig(cfg.LLM)),
		agent.WithLogger(logger),
	)
}

// storeConfig 为单个后端构造摘要日志配置
func storeConfig(cfg *config.Config, backend string) persistence.StoreConfig {
	return persistence.StoreConfig{
		Type:     persistence.StoreType(backend),
		BaseDir:  cfg.Store.BaseDir,
		FileName: cfg.Store.FileName,
		Redis: persistence.RedisStoreConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			KeyPrefix: cfg.Store.KeyPrefix,
			TLS:       cfg.Redis.TLS,
			Timeout:   cfg.Redis.Timeout,
		},
	}
}

// openSummaryLog 按配置的后端列表打开摘要日志，多个后端用 Tee 合并
func (a *app) openSummaryLog(ctx context.Context) error {
	var logs []persistence.SummaryLog
	closeAll := func() {
		for _, l := range logs {
			_ = l.Close()
		}
	}

	for _, backend := range a.cfg.Store.Backends {
		sc := storeConfig(a.cfg, backend)

		if sc.Type == persistence.StoreTypeSQL && a.pool == nil {
			db, err := database.Open(a.cfg.Database, a.logger)
			if err != nil {
				closeAll()
				return err
			}
			pool, err := database.NewPool(db, a.cfg.Database.Driver,
				database.PoolConfigFrom(a.cfg.Database), a.collector, a.logger)
			if err != nil {
				closeAll()
				return err
			}
			a.pool = pool
		}

		l, err := persistence.NewSummaryLog(sc, a.poolDB())
		if err != nil {
			closeAll()
			return fmt.Errorf("open %s summary log: %w", backend, err)
		}
		if err := l.Ping(ctx); err != nil {
			_ = l.Close()
			closeAll()
			return fmt.Errorf("%s summary log unreachable: %w", backend, err)
		}
		logs = append(logs, l)
	}

	switch len(logs) {
	case 0:
		a.summaryLog = persistence.NewMemorySummaryLog()
	case 1:
		a.summaryLog = logs[0]
	default:
		a.summaryLog = persistence.Tee(logs...)
	}
	a.logger.Info("summary log ready", zap.Strings("backends", a.cfg.Store.Backends))
	return nil
}

func (a *app) poolDB() *gorm.DB {
	if a.pool == nil {
		return nil
	}
	return a.pool.DB()
}

// newApp 按依赖顺序组装组件，失败时关闭已打开的部分
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		runID:     uuid.NewString(),
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector("policyswarm", logger),
		hub:       server.NewHub(logger),
	}

	var err error
	a.registry, err = buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	a.telemetry, err = telemetry.Init(ctx, cfg.Telemetry, telemetry.Run{
		ID:          a.runID,
		Version:     Version,
		Model:       cfg.LLM.Model,
		TotalTurns:  cfg.Run.TotalTurns,
		Temperature: cfg.LLM.Temperature,
		Personas:    a.registry.Len(),
	}, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	a.provider, err = factory.NewProvider(factory.ProviderConfig{
		Name:                cfg.LLM.Provider,
		APIKey:              cfg.LLM.APIKey,
		BaseURL:             cfg.LLM.BaseURL,
		Model:               cfg.LLM.Model,
		Timeout:             cfg.LLM.Timeout,
		MaxRetries:          cfg.LLM.MaxRetries,
		RequestsPerSecond:   cfg.LLM.RequestsPerSecond,
		BreakerThreshold:    cfg.LLM.BreakerThreshold,
		BreakerResetTimeout: cfg.LLM.BreakerResetTimeout,
	}, a.collector, logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	if err := a.openSummaryLog(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// newEngine 创建对话引擎并注册观察者
func (a *app) newEngine() (*conversation.Engine, error) {
	cfg := a.cfg

	summarizer := modelConfig(cfg.LLM)
	if cfg.Summary.Model != "" {
		summarizer.Model = cfg.Summary.Model
	}

	window := agentctx.DefaultWindowConfig()
	window.MaxMessages = cfg.Run.MaxMessages
	window.MaxTokens = cfg.Run.WindowTokens

	opts := []conversation.Option{
		conversation.WithLogger(a.logger),
		conversation.WithSummaryLog(a.summaryLog),
		conversation.WithTracer(a.telemetry.Tracer()),
		conversation.WithObserver(a.collector),
		conversation.WithObserver(a.hub),
	}
	if cfg.Run.WindowTokens > 0 {
		opts = append(opts, conversation.WithTokenCounter(tokenizer.ForModel(cfg.LLM.Model, a.logger)))
	}
	if instruments, err := telemetry.NewTurnInstruments(a.telemetry.Meter()); err != nil {
		a.logger.Warn("turn instruments unavailable", zap.Error(err))
	} else {
		opts = append(opts, conversation.WithObserver(instruments))
	}

	return conversation.NewEngine(a.registry, a.provider, conversation.Config{
		RunID:               a.runID,
		TotalTurns:          cfg.Run.TotalTurns,
		MaxHandoffDepth:     cfg.Run.MaxHandoffDepth,
		InitialMessage:      cfg.Run.InitialMessage,
		FlushPartialWindows: cfg.Summary.FlushPartialWindows,
		Window:              window,
		Evaluator:           modelConfig(cfg.LLM),
		Summarizer:          summarizer,
	}, opts...)
}

// startMonitor 在开启时启动监控服务
func (a *app) startMonitor(source server.StateSource) error {
	if !a.cfg.Server.Enabled {
		return nil
	}

	a.monitor = server.NewMonitor(a.cfg.Server, server.RouterConfig{
		Source:   source,
		Hub:      a.hub,
		Metrics:  a.collector.Handler(),
		Recorder: a.collector,
		Logger:   a.logger,
	}, a.logger)
	if err := a.monitor.Start(); err != nil {
		a.monitor = nil
		return err
	}
	return nil
}

// close 逆序关闭组件，ctx 只用于限定关闭耗时
func (a *app) close(ctx context.Context) {
	var errs []error
	if a.monitor != nil {
		errs = append(errs, a.monitor.Shutdown(ctx))
	}
	if a.summaryLog != nil {
		errs = append(errs, a.summaryLog.Close())
	}
	if a.pool != nil {
		a.pool.Report()
		errs = append(errs, a.pool.Close())
	}
	errs = append(errs, a.telemetry.Shutdown(ctx))

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown finished with errors", zap.Error(err))
	}
}
