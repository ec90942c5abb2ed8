// Package framework 持有对话共同维护的政策框架：提案、决议、
// 四项指标与政治倾向。
package framework

import (
	"fmt"
	"sync"
)

// Metrics 是四项评估指标，每项取值 [0,1]
type Metrics struct {
	Economy               float64 `json:"economy"`
	Fairness              float64 `json:"fairness"`
	Equality              float64 `json:"equality"`
	TechnologicalProgress float64 `json:"technological_progress"`
}

// Validate 检查每项指标都在 [0,1] 内
func (m Metrics) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"economy", m.Economy},
		{"fairness", m.Fairness},
		{"equality", m.Equality},
		{"technological_progress", m.TechnologicalProgress},
	} {
		if f.value < 0 || f.value > 1 || f.value != f.value {
			return fmt.Errorf("metric %s=%v outside [0,1]", f.name, f.value)
		}
	}
	return nil
}

// ValidateLeaning 检查倾向值在 [-1,1] 内
func ValidateLeaning(l float64) error {
	if l < -1 || l > 1 || l != l {
		return fmt.Errorf("political_leaning=%v outside [-1,1]", l)
	}
	return nil
}

// Snapshot 是共享上下文的不可变副本
type Snapshot struct {
	Proposals string  `json:"proposals"`
	Decisions string  `json:"decisions"`
	Metrics   Metrics `json:"metrics"`
	Leaning   float64 `json:"political_leaning"`
	Version   uint64  `json:"version"`
}

// SharedContext 是唯一可变的框架状态。
// 只有引擎写入，读写锁保证观察者不会看到半更新的指标。
type SharedContext struct {
	mu      sync.RWMutex
	state   Snapshot
	version uint64
}

// New 创建零值上下文：空文本、指标全 0、倾向 0
func New() *SharedContext {
	return &SharedContext{}
}

// Snapshot 返回当前状态的副本
func (c *SharedContext) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Version = c.version
	return s
}

// ApplyEvaluation 整体覆盖指标与倾向
func (c *SharedContext) ApplyEvaluation(m Metrics, leaning float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Metrics = m
	c.state.Leaning = leaning
	c.version++
}

// ApplyAgentEdits 覆盖非空指针对应的文本，后写者胜出
func (c *SharedContext) ApplyAgentEdits(proposals, decisions *string) bool {
	if proposals == nil && decisions == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if proposals != nil {
		c.state.Proposals = *proposals
	}
	if decisions != nil {
		c.state.Decisions = *decisions
	}
	c.version++
	return true
}
