package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BaSui01/policyswarm/types"
)

var (
	ErrStoreClosed = errors.New("summary log is closed")
	// ErrInvalidSummary 表示摘要缺少级别或回合为负
	ErrInvalidSummary = errors.New("invalid summary")
)

// SummaryLog 是只追加的摘要审计日志，所有后端按追加顺序返回记录
type SummaryLog interface {
	// Append 追加一条摘要，ID 与 CreatedAt 为空时补全
	Append(ctx context.Context, s types.Summary) error
	List(ctx context.Context, q Query) ([]types.Summary, error)
	Ping(ctx context.Context) error
	Close() error
}

// Query 的零值字段不参与过滤
type Query struct {
	RunID string
	Level types.SummaryLevel
}

func (q Query) match(s types.Summary) bool {
	return (q.RunID == "" || s.RunID == q.RunID) && (q.Level == "" || s.Level == q.Level)
}

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQL    StoreType = "sql"
)

// StoreConfig 选择一个后端；Redis 字段只在 redis 后端使用
type StoreConfig struct {
	Type     StoreType        `json:"type" yaml:"type"`
	BaseDir  string           `json:"base_dir" yaml:"base_dir"`   // summary.txt 与 summaries.jsonl 所在目录
	FileName string           `json:"file_name" yaml:"file_name"` // 人类可读日志的文件名
	Redis    RedisStoreConfig `json:"redis" yaml:"redis"`
}

type RedisStoreConfig struct {
	Addr      string        `json:"addr" yaml:"addr"`
	Password  string        `json:"password" yaml:"password"`
	DB        int           `json:"db" yaml:"db"`
	PoolSize  int           `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string        `json:"key_prefix" yaml:"key_prefix"`
	TLS       bool          `json:"tls" yaml:"tls"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// NewSummaryLog 按 Type 打开后端，空 Type 视为 memory。db 只给 sql 后端使用。
func NewSummaryLog(cfg StoreConfig, db *gorm.DB) (SummaryLog, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemorySummaryLog(), nil
	case StoreTypeFile:
		return NewFileSummaryLog(cfg)
	case StoreTypeRedis:
		return NewRedisSummaryLog(cfg)
	case StoreTypeSQL:
		if db == nil {
			return nil, errors.New("sql summary log requires a database connection")
		}
		return NewSQLSummaryLog(db)
	}
	return nil, fmt.Errorf("unsupported summary log type %q", cfg.Type)
}

func normalize(s types.Summary) (types.Summary, error) {
	if s.Level == "" || s.Turn < 0 {
		return s, ErrInvalidSummary
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return s, nil
}
