package persistence

import (
	"context"
	"errors"

	"github.com/BaSui01/policyswarm/types"
)

// TeeSummaryLog 把摘要写入多个后端，List 只读第一个后端
type TeeSummaryLog struct {
	logs []SummaryLog
}

// Tee 组合多个摘要日志，忽略 nil
func Tee(logs ...SummaryLog) *TeeSummaryLog {
	t := &TeeSummaryLog{}
	for _, l := range logs {
		if l != nil {
			t.logs = append(t.logs, l)
		}
	}
	return t
}

// Append 写入全部后端，ID 与时间只生成一次
func (t *TeeSummaryLog) Append(ctx context.Context, s types.Summary) error {
	s, err := normalize(s)
	if err != nil {
		return err
	}
	var errs []error
	for _, l := range t.logs {
		if err := l.Append(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List implements SummaryLog
func (t *TeeSummaryLog) List(ctx context.Context, q Query) ([]types.Summary, error) {
	if len(t.logs) == 0 {
		return []types.Summary{}, nil
	}
	return t.logs[0].List(ctx, q)
}

// Close closes every backend
func (t *TeeSummaryLog) Close() error {
	var errs []error
	for _, l := range t.logs {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ping checks every backend
func (t *TeeSummaryLog) Ping(ctx context.Context) error {
	var errs []error
	for _, l := range t.logs {
		if err := l.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
