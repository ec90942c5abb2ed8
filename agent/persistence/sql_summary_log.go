package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/policyswarm/types"
	"gorm.io/gorm"
)

// SummaryRecord 是摘要在 SQL 中的行结构
type SummaryRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Seq       int64     `gorm:"index"`
	RunID     string    `gorm:"size:64;index"`
	Level     string    `gorm:"size:16;index"`
	Turn      int       `gorm:"index"`
	Text      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName 实现 gorm 的 Tabler 接口
func (SummaryRecord) TableName() string { return "summary_records" }

func recordFrom(s types.Summary, seq int64) SummaryRecord {
	return SummaryRecord{
		ID:        s.ID,
		Seq:       seq,
		RunID:     s.RunID,
		Level:     string(s.Level),
		Turn:      s.Turn,
		Text:      s.Text,
		CreatedAt: s.CreatedAt,
	}
}

func (r SummaryRecord) summary() types.Summary {
	return types.Summary{
		ID:        r.ID,
		RunID:     r.RunID,
		Level:     types.SummaryLevel(r.Level),
		Turn:      r.Turn,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

// SQLSummaryLog 基于 gorm 的摘要日志
type SQLSummaryLog struct {
	db *gorm.DB
}

// NewSQLSummaryLog 创建 SQL 摘要日志并迁移表结构
func NewSQLSummaryLog(db *gorm.DB) (*SQLSummaryLog, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.AutoMigrate(&SummaryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate summary_records: %w", err)
	}
	return &SQLSummaryLog{db: db}, nil
}

// Append implements SummaryLog
func (s *SQLSummaryLog) Append(ctx context.Context, sum types.Summary) error {
	sum, err := normalize(sum)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Model(&SummaryRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error; err != nil {
			return err
		}
		rec := recordFrom(sum, seq+1)
		return tx.Create(&rec).Error
	})
}

// List implements SummaryLog
func (s *SQLSummaryLog) List(ctx context.Context, q Query) ([]types.Summary, error) {
	query := s.db.WithContext(ctx).Model(&SummaryRecord{})
	if q.RunID != "" {
		query = query.Where("run_id = ?", q.RunID)
	}
	if q.Level != "" {
		query = query.Where("level = ?", string(q.Level))
	}

	var records []SummaryRecord
	if err := query.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]types.Summary, len(records))
	for i, r := range records {
		out[i] = r.summary()
	}
	return out, nil
}

// Close 不关闭连接，连接池由 database.Pool 管理
func (s *SQLSummaryLog) Close() error { return nil }

// Ping checks if the store is healthy
func (s *SQLSummaryLog) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
