package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/agent/handoff"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// turnOutput 是一个回合内角色链的产出
type turnOutput struct {
	speaker  string
	final    string
	messages []types.Message
	handoffs []handoff.Handoff
}

// runAgents 从根角色开始执行角色链，直到角色给出纯文本、请求评估或交接被拒绝
func (e *Engine) runAgents(ctx context.Context, turn int) (turnOutput, error) {
	chain := handoff.NewChain(turn, e.config.MaxHandoffDepth, e.logger)
	active := e.registry.Root()
	out := turnOutput{speaker: active.Name()}

	for {
		e.setState(StateActive, active.Name())

		choice, err := e.invoke(ctx, active, turn, out.messages)
		if err != nil {
			return out, err
		}

		d, err := handoff.Resolve(e.registry, active, choice.Message.ToolCalls)
		if err != nil {
			e.logger.Error("protocol violation",
				zap.Int("turn", turn),
				zap.String("agent", active.Name()),
				zap.Error(err))
			return out, err
		}
		for _, edit := range d.Edits {
			if e.shared.ApplyAgentEdits(edit.Proposals, edit.Decisions) {
				e.logger.Debug("framework edited", zap.String("agent", active.Name()))
			}
		}
		if len(d.Ignored) > 0 {
			e.logger.Warn("extra control calls ignored",
				zap.String("agent", active.Name()),
				zap.Strings("tools", d.Ignored))
		}

		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			out.speaker, out.final = active.Name(), text
			out.messages = append(out.messages,
				types.NewAssistantMessage(text).WithAuthor(active.Name()).WithTurn(turn))
		}

		switch d.Kind {
		case handoff.KindTransfer:
			if _, ok := chain.Request(active.Name(), d.Target.Name()); !ok {
				chain.Complete()
				out.handoffs = chain.Records()
				return out, nil
			}
			active = d.Target
			continue

		case handoff.KindEvaluate:
			e.setState(StateEvaluating, active.Name())
			e.evaluate(ctx, d.Tool)
		}

		chain.Complete()
		out.handoffs = chain.Records()
		return out, nil
	}
}

// invoke 对单个角色发起一次补全，失败即为致命错误
func (e *Engine) invoke(ctx context.Context, a *agent.Agent, turn int, pending []types.Message) (llm.ChatChoice, error) {
	ctx = types.WithPhase(ctx, "persona")
	req := e.personaRequest(ctx, a, pending)

	e.logger.Debug("invoking persona",
		zap.Int("turn", turn),
		zap.String("agent", a.Name()),
		zap.Int("messages", len(req.Messages)))

	resp, err := e.provider.Completion(ctx, req)
	if err != nil {
		return llm.ChatChoice{}, types.NewCompletionFailure(
			fmt.Sprintf("persona %s completion failed at turn %d", a.Name(), turn), err)
	}
	choice, err := llm.FirstChoice(resp)
	if err != nil {
		return llm.ChatChoice{}, types.NewCompletionFailure(
			fmt.Sprintf("persona %s returned no choices at turn %d", a.Name(), turn), err)
	}
	return choice, nil
}

// personaRequest 组装角色请求：系统提示 + 活动窗口 + 本回合已产生的消息
func (e *Engine) personaRequest(ctx context.Context, a *agent.Agent, pending []types.Message) *llm.ChatRequest {
	history := e.window.Messages()
	messages := make([]llm.Message, 0, len(history)+len(pending)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: a.Instructions() + "\n\n" + FrameworkBrief(e.shared.Snapshot()),
	})
	for _, m := range history {
		messages = append(messages, toLLMMessage(m))
	}
	for _, m := range pending {
		messages = append(messages, toLLMMessage(m))
	}

	model := a.Model()
	traceID, _ := types.RunID(ctx)
	return &llm.ChatRequest{
		TraceID:     traceID,
		Model:       model.Model,
		Messages:    messages,
		MaxTokens:   model.MaxTokens,
		Temperature: model.Temperature,
		Tools:       a.Tools(),
		ToolChoice:  "auto",
		Metadata:    map[string]string{"agent": a.Name()},
	}
}

func toLLMMessage(m types.Message) llm.Message {
	msg := llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	if m.Author != "" {
		msg.Name = agent.ToolSlug(m.Author)
	}
	return msg
}

// FrameworkBrief 把共享上下文渲染为角色可读的文本
func FrameworkBrief(s framework.Snapshot) string {
	proposals, decisions := s.Proposals, s.Decisions
	if strings.TrimSpace(proposals) == "" {
		proposals = "(none yet)"
	}
	if strings.TrimSpace(decisions) == "" {
		decisions = "(none yet)"
	}
	var b strings.Builder
	b.WriteString("Current political framework:\n")
	fmt.Fprintf(&b, "Proposals: %s\n", proposals)
	fmt.Fprintf(&b, "Decisions: %s\n", decisions)
	fmt.Fprintf(&b, "Metrics: economy=%.2f fairness=%.2f equality=%.2f technological_progress=%.2f\n",
		s.Metrics.Economy, s.Metrics.Fairness, s.Metrics.Equality, s.Metrics.TechnologicalProgress)
	fmt.Fprintf(&b, "Political leaning: %.2f", s.Leaning)
	return b.String()
}
