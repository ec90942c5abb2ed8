package persistence

import (
	"context"
	"sync"

	"github.com/BaSui01/policyswarm/types"
)

// MemorySummaryLog 把摘要保存在进程内，适合测试和无持久化的运行
type MemorySummaryLog struct {
	mu        sync.RWMutex
	summaries []types.Summary
	closed    bool
}

func NewMemorySummaryLog() *MemorySummaryLog {
	return &MemorySummaryLog{}
}

func (s *MemorySummaryLog) Append(_ context.Context, sum types.Summary) error {
	sum, err := normalize(sum)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.summaries = append(s.summaries, sum)
	return nil
}

// List 按追加顺序返回匹配的摘要
func (s *MemorySummaryLog) List(_ context.Context, q Query) ([]types.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]types.Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		if q.match(sum) {
			out = append(out, sum)
		}
	}
	return out, nil
}

func (s *MemorySummaryLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemorySummaryLog) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}
