package handoff

import (
	"encoding/json"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
)

// Kind 是一次回复携带的控制意图
type Kind string

const (
	KindNone     Kind = "none"
	KindTransfer Kind = "transfer"
	KindEvaluate Kind = "evaluate"
)

// Edit 是一次框架文本修改，nil 字段表示保持不变
type Edit struct {
	Proposals *string `json:"proposals,omitempty"`
	Decisions *string `json:"decisions,omitempty"`
}

// Empty 判断编辑是否不含任何字段
func (e Edit) Empty() bool {
	return e.Proposals == nil && e.Decisions == nil
}

// Directive 是从一次回复中解析出的指令
type Directive struct {
	Kind    Kind
	Target  *agent.Agent // 仅 KindTransfer
	Tool    string       // 触发控制的工具名
	CallID  string
	Edits   []Edit
	Ignored []string // 第一个控制调用之后被忽略的控制调用
}

// Resolve 根据调用方的工具权限解析工具调用
func Resolve(reg *agent.Registry, from *agent.Agent, calls []llm.ToolCall) (Directive, error) {
	d := Directive{Kind: KindNone}
	for _, call := range calls {
		if !from.HasTool(call.Name) {
			return Directive{}, violation("%s called unavailable tool %q", from.Name(), call.Name)
		}

		switch {
		case call.Name == agent.ToolUpdateFramework:
			edit, err := decodeEdit(call)
			if err != nil {
				return Directive{}, err
			}
			if !edit.Empty() {
				d.Edits = append(d.Edits, edit)
			}

		case agent.IsTransferTool(call.Name):
			target, ok := reg.ByTransferTool(call.Name)
			if !ok || !from.CanTransferTo(target.Name()) {
				return Directive{}, violation("%s may not call %q", from.Name(), call.Name)
			}
			if d.Kind != KindNone {
				d.Ignored = append(d.Ignored, call.Name)
				continue
			}
			d.Kind, d.Target, d.Tool, d.CallID = KindTransfer, target, call.Name, call.ID

		case call.Name == agent.ToolEvaluateFramework || call.Name == agent.ToolEvaluateMetrics:
			edit, err := decodeEdit(call)
			if err != nil {
				return Directive{}, err
			}
			if !edit.Empty() {
				d.Edits = append(d.Edits, edit)
			}
			if d.Kind != KindNone {
				d.Ignored = append(d.Ignored, call.Name)
				continue
			}
			d.Kind, d.Tool, d.CallID = KindEvaluate, call.Name, call.ID

		default:
			return Directive{}, violation("unknown tool %q", call.Name)
		}
	}
	return d, nil
}

func decodeEdit(call llm.ToolCall) (Edit, error) {
	var e Edit
	if len(call.Arguments) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(call.Arguments, &e); err != nil {
		return Edit{}, violation("invalid arguments for %s: %v", call.Name, err)
	}
	return e, nil
}

func violation(format string, args ...any) *types.Error {
	return types.NewError(types.ErrProtocolViolation, format, args...)
}
