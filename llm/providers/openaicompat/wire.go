package openaicompat

import (
	"encoding/json"
	"time"

	"github.com/BaSui01/policyswarm/llm"
)

// 上游 Chat Completions 的请求与响应结构

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

// arguments 在上游是 JSON 字符串而不是对象
type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string  `json:"type"`
	Function toolDef `json:"function"`
}

type toolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatPayload struct {
	Model          string          `json:"model"`
	Messages       []wireMessage   `json:"messages"`
	Tools          []wireTool      `json:"tools,omitempty"`
	ToolChoice     any             `json:"tool_choice,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatReply struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created,omitempty"`
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      wireMessage `json:"message"`
	} `json:"choices"`
	Usage *llm.ChatUsage `json:"usage,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// newPayload 把 llm.ChatRequest 编码为上游请求；model 已经过默认值解析
func newPayload(req *llm.ChatRequest, model string) chatPayload {
	payload := chatPayload{
		Model:       model,
		Messages:    make([]wireMessage, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, wireMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			ToolCalls: outgoingCalls(m.ToolCalls),
		})
	}
	for _, t := range req.Tools {
		params := t.Parameters
		if len(params) == 0 {
			params = emptyObjectSchema
		}
		payload.Tools = append(payload.Tools, wireTool{
			Type:     "function",
			Function: toolDef{Name: t.Name, Description: t.Description, Parameters: params},
		})
	}
	// tool_choice 只在携带工具时有意义
	if len(payload.Tools) > 0 {
		payload.ToolChoice = toolChoice(req.ToolChoice)
	}
	if req.ResponseFormat != "" {
		payload.ResponseFormat = &responseFormat{Type: req.ResponseFormat}
	}
	return payload
}

func outgoingCalls(calls []llm.ToolCall) []wireToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]wireToolCall, len(calls))
	for i, tc := range calls {
		args := string(tc.Arguments)
		if args == "" {
			args = "{}"
		}
		out[i] = wireToolCall{ID: tc.ID, Type: "function", Function: wireFunction{Name: tc.Name, Arguments: args}}
	}
	return out
}

// toolChoice: auto/none/required 原样透传，其它值视为指定工具名
func toolChoice(choice string) any {
	switch choice {
	case "":
		return nil
	case "auto", "none", "required":
		return choice
	}
	return map[string]any{
		"type":     "function",
		"function": map[string]string{"name": choice},
	}
}

// toResponse 解码上游响应；无法解析的工具参数按空对象处理
func (r *chatReply) toResponse(provider string) *llm.ChatResponse {
	resp := &llm.ChatResponse{
		ID:       r.ID,
		Provider: provider,
		Model:    r.Model,
		Choices:  make([]llm.ChatChoice, 0, len(r.Choices)),
	}
	for _, c := range r.Choices {
		msg := llm.Message{Role: llm.RoleAssistant, Content: c.Message.Content}
		for _, tc := range c.Message.ToolCalls {
			args := json.RawMessage(tc.Function.Arguments)
			if !json.Valid(args) {
				args = json.RawMessage("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
		}
		resp.Choices = append(resp.Choices, llm.ChatChoice{FinishReason: c.FinishReason, Message: msg})
	}
	if r.Usage != nil {
		resp.Usage = *r.Usage
	}
	if r.Created != 0 {
		resp.CreatedAt = time.Unix(r.Created, 0)
	}
	return resp
}
