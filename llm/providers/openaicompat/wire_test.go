package openaicompat

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/BaSui01/policyswarm/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewPayload_Tools(t *testing.T) {
	payload := newPayload(&llm.ChatRequest{
		Messages:   []llm.Message{{Role: llm.RoleUser, Content: "go"}},
		ToolChoice: "evaluate_metrics",
		Tools: []llm.ToolSchema{
			{Name: "transfer_to_economist", Description: "hand off"},
			{Name: "update_framework", Parameters: json.RawMessage(`{"type":"object"}`)},
		},
	}, "m")

	require.Len(t, payload.Tools, 2)
	assert.Equal(t, "function", payload.Tools[0].Type)
	assert.Equal(t, "hand off", payload.Tools[0].Function.Description)
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(payload.Tools[0].Function.Parameters))
	assert.JSONEq(t, `{"type":"object"}`, string(payload.Tools[1].Function.Parameters))

	named, ok := payload.ToolChoice.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function", named["type"])
}

func TestNewPayload_NoToolsDropsToolChoice(t *testing.T) {
	payload := newPayload(&llm.ChatRequest{
		Messages:       []llm.Message{{Role: llm.RoleUser, Content: "go"}},
		ToolChoice:     "auto",
		ResponseFormat: "json_object",
	}, "m")
	assert.Nil(t, payload.Tools)
	assert.Nil(t, payload.ToolChoice)
	require.NotNil(t, payload.ResponseFormat)
	assert.Equal(t, "json_object", payload.ResponseFormat.Type)
}

func TestToolChoice(t *testing.T) {
	assert.Nil(t, toolChoice(""))
	assert.Equal(t, "auto", toolChoice("auto"))
	assert.Equal(t, "none", toolChoice("none"))
	assert.IsType(t, map[string]any{}, toolChoice("evaluate_metrics"))
}

func TestChatReply_InvalidArgumentsBecomeEmptyObject(t *testing.T) {
	var reply chatReply
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "chatcmpl-1",
		"choices": [{"message": {"role": "assistant", "tool_calls": [
			{"id": "call_1", "type": "function", "function": {"name": "evaluate_framework", "arguments": "not json"}}
		]}}],
		"usage": {"total_tokens": 12}
	}`), &reply))

	resp := reply.toResponse("openai")
	require.Len(t, resp.Choices, 1)
	require.Len(t, resp.Choices[0].Message.ToolCalls, 1)
	assert.Equal(t, "{}", string(resp.Choices[0].Message.ToolCalls[0].Arguments))
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, "openai", resp.Provider)
	assert.True(t, resp.CreatedAt.IsZero())
}

// 工具调用经过上游格式往返后名称与参数不变
func TestProperty_ToolCallRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(rt, "n")
		calls := make([]llm.ToolCall, n)
		for i := range calls {
			calls[i] = llm.ToolCall{
				ID:   rapid.StringMatching(`call_[a-zA-Z0-9]{8}`).Draw(rt, fmt.Sprintf("id_%d", i)),
				Name: rapid.StringMatching(`[a-z][a-z_]{2,20}`).Draw(rt, fmt.Sprintf("name_%d", i)),
				Arguments: json.RawMessage(fmt.Sprintf(`{"proposals":"%s"}`,
					rapid.StringMatching(`[a-zA-Z ]{0,20}`).Draw(rt, fmt.Sprintf("arg_%d", i)))),
			}
		}

		sent := newPayload(&llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleAssistant, ToolCalls: calls}}}, "m")
		data, err := json.Marshal(map[string]any{"choices": []any{map[string]any{"message": sent.Messages[0]}}})
		if err != nil {
			rt.Fatal(err)
		}
		var reply chatReply
		if err := json.Unmarshal(data, &reply); err != nil {
			rt.Fatal(err)
		}

		got := reply.toResponse("p").Choices[0].Message.ToolCalls
		if len(got) != n {
			rt.Fatalf("expected %d tool calls, got %d", n, len(got))
		}
		for i := range calls {
			if got[i].ID != calls[i].ID || got[i].Name != calls[i].Name {
				rt.Fatalf("tool call %d changed: %+v vs %+v", i, got[i], calls[i])
			}
			if string(got[i].Arguments) != string(calls[i].Arguments) {
				rt.Fatalf("arguments changed: %s vs %s", got[i].Arguments, calls[i].Arguments)
			}
		}
	})
}
