package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/policyswarm/config"
)

// ErrPoolClosed 在 Close 之后调用 Ping 时返回
var ErrPoolClosed = errors.New("database pool is closed")

const pingTimeout = 5 * time.Second

// StatsRecorder 接收连接数，internal/metrics.Collector 实现了它
type StatsRecorder interface {
	RecordDBConnections(database string, open, idle int)
}

// PoolConfig 是 sql.DB 的连接上限。WatchInterval 为 0 时不启动后台巡检。
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	WatchInterval   time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		WatchInterval:   30 * time.Second,
	}
}

// PoolConfigFrom 用配置中的正值覆盖默认值
func PoolConfigFrom(cfg config.DatabaseConfig) PoolConfig {
	pc := DefaultPoolConfig()
	if cfg.MaxOpenConns > 0 {
		pc.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		pc.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	return pc
}

func (c PoolConfig) Validate() error {
	switch {
	case c.MaxOpenConns <= 0:
		return fmt.Errorf("max_open_conns must be positive, got %d", c.MaxOpenConns)
	case c.MaxIdleConns <= 0:
		return fmt.Errorf("max_idle_conns must be positive, got %d", c.MaxIdleConns)
	case c.MaxIdleConns > c.MaxOpenConns:
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	return nil
}

// Pool 拥有 SQL 摘要日志使用的连接。
// 后台巡检按 WatchInterval 探活并上报连接数，Close 等待巡检退出。
type Pool struct {
	db       *gorm.DB
	sqlDB    *sql.DB
	name     string
	recorder StatsRecorder
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool 应用连接上限。name 是指标标签，recorder 可以为 nil。
func NewPool(db *gorm.DB, name string, cfg PoolConfig, recorder StatsRecorder, logger *zap.Logger) (*Pool, error) {
	if db == nil {
		return nil, errors.New("database pool: nil db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		db:       db,
		sqlDB:    sqlDB,
		name:     name,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "db_pool"), zap.String("database", name)),
		cancel:   cancel,
	}
	if cfg.WatchInterval > 0 {
		p.wg.Add(1)
		go p.watch(ctx, cfg.WatchInterval)
	}

	p.logger.Info("database pool ready",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime))
	return p, nil
}

func (p *Pool) DB() *gorm.DB { return p.db }

func (p *Pool) Ping(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	return p.sqlDB.PingContext(ctx)
}

func (p *Pool) Stats() sql.DBStats { return p.sqlDB.Stats() }

// Report 上报当前连接数；没有 recorder 时什么也不做
func (p *Pool) Report() {
	if p.recorder == nil {
		return
	}
	s := p.Stats()
	p.recorder.RecordDBConnections(p.name, s.OpenConnections, s.Idle)
}

// Close 可重复调用，只有第一次会关闭底层连接
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Info("database pool closed")
	return p.sqlDB.Close()
}

func (p *Pool) watch(ctx context.Context, every time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			p.logger.Warn("database ping failed", zap.Error(err))
			continue
		}
		p.Report()
	}
}
