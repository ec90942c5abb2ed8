package mocks

import (
	"encoding/json"
	"fmt"

	"github.com/BaSui01/policyswarm/llm"
)

// TextResponse 返回简单的文本响应
func TextResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-mock",
		Provider: "mock",
		Model:    "gpt-4o-mini",
		Choices: []llm.ChatChoice{{
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
		Usage: llm.ChatUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}
}

// ToolCallResponse 返回携带一次工具调用的响应
func ToolCallResponse(tool string, args any) *llm.ChatResponse {
	raw := json.RawMessage("{}")
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			panic(fmt.Sprintf("mocks: marshal tool args: %v", err))
		}
		raw = b
	}
	return &llm.ChatResponse{
		ID:       "resp-mock-tool",
		Provider: "mock",
		Model:    "gpt-4o-mini",
		Choices: []llm.ChatChoice{{
			FinishReason: "tool_calls",
			Message: llm.Message{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{{
					ID:        "call_" + tool,
					Name:      tool,
					Arguments: raw,
				}},
			},
		}},
	}
}

// EvaluationJSON 构造符合评估协议的响应文本
func EvaluationJSON(economy, fairness, equality, tech, leaning float64) string {
	return fmt.Sprintf(`{"metrics":{"economy":%g,"fairness":%g,"equality":%g,"technological_progress":%g},"political_leaning":%g}`,
		economy, fairness, equality, tech, leaning)
}
