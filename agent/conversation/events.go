package conversation

import (
	"time"

	"github.com/BaSui01/policyswarm/agent/evaluation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/agent/handoff"
	"github.com/BaSui01/policyswarm/types"
)

// TurnEvent 描述一个已完成的回合
type TurnEvent struct {
	RunID      string             `json:"run_id"`
	Turn       int                `json:"turn"`
	TotalTurns int                `json:"total_turns"`
	Speaker    string             `json:"speaker"`
	Message    string             `json:"message"`
	Handoffs   []handoff.Handoff  `json:"handoffs,omitempty"`
	Evaluation evaluation.Status  `json:"evaluation"`
	Snapshot   framework.Snapshot `json:"snapshot"`
	Summaries  []types.Summary    `json:"summaries,omitempty"`
	Duration   time.Duration      `json:"duration"`
}

// Observer 接收回合事件。回调在引擎 goroutine 中同步执行，实现应尽快返回。
type Observer interface {
	OnTurn(event TurnEvent)
}

// ObserverFunc 把函数适配为 Observer
type ObserverFunc func(event TurnEvent)

// OnTurn implements Observer
func (f ObserverFunc) OnTurn(event TurnEvent) { f(event) }
