package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall 是模型请求调用的工具；角色之间的交接与框架修改都通过它表达
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolSchema 描述一个可调用的工具，Parameters 为 JSON Schema
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ChatRequest 是一次补全请求。
// TraceID 携带运行 ID；Metadata 只在进程内使用，不发往上游。
type ChatRequest struct {
	TraceID        string            `json:"trace_id,omitempty"`
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    float32           `json:"temperature,omitempty"`
	Tools          []ToolSchema      `json:"tools,omitempty"`
	ToolChoice     string            `json:"tool_choice,omitempty"`     // auto/none/<tool name>
	ResponseFormat string            `json:"response_format,omitempty"` // json_object
	Metadata       map[string]string `json:"-"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type ChatChoice struct {
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// FirstChoice 返回第一个选项；响应为空或没有选项时返回 ErrEmptyResponse
func FirstChoice(resp *ChatResponse) (ChatChoice, error) {
	switch {
	case resp == nil:
		return ChatChoice{}, &Error{Code: ErrEmptyResponse, Message: "no response"}
	case len(resp.Choices) == 0:
		return ChatChoice{}, &Error{
			Code:     ErrEmptyResponse,
			Message:  fmt.Sprintf("response %q has no choices", resp.ID),
			Provider: resp.Provider,
		}
	}
	return resp.Choices[0], nil
}

// TextOf 返回第一个选项去除首尾空白后的文本
func TextOf(resp *ChatResponse) (string, error) {
	choice, err := FirstChoice(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

// SystemUser 构建评估与摘要请求使用的两条消息
func SystemUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
