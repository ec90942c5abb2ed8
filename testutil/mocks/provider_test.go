package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/BaSui01/policyswarm/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_RulesInOrder(t *testing.T) {
	p := NewMockProvider().
		OnText("eval", SystemContains("evaluates"), EvaluationJSON(0.5, 0.5, 0.5, 0.5, 0)).
		OnText("any", Any(), "fallback")

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: llm.SystemUser("You evaluates things", "go"),
	})
	require.NoError(t, err)
	text, _ := llm.TextOf(resp)
	assert.Contains(t, text, `"political_leaning":0`)

	resp, err = p.Completion(context.Background(), &llm.ChatRequest{
		Messages: llm.SystemUser("persona", "go"),
	})
	require.NoError(t, err)
	text, _ = llm.TextOf(resp)
	assert.Equal(t, "fallback", text)

	assert.Equal(t, 1, p.Hits("eval"))
	assert.Equal(t, 1, p.Hits("any"))
	assert.Equal(t, 2, p.CallCount())
}

func TestMockProvider_FailAfter(t *testing.T) {
	boom := errors.New("boom")
	p := NewMockProvider().WithFailAfter(1, boom)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{})
	require.NoError(t, err)
	_, err = p.Completion(context.Background(), &llm.ChatRequest{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.Hits("fail_after"))
}

func TestMockProvider_FailAfterKeepsRulesBeforeThreshold(t *testing.T) {
	boom := errors.New("boom")
	p := NewMockProvider().
		WithFailAfter(2, boom).
		OnText("persona", Any(), "speaking")

	for i := 0; i < 2; i++ {
		resp, err := p.Completion(context.Background(), &llm.ChatRequest{})
		require.NoError(t, err)
		text, err := llm.TextOf(resp)
		require.NoError(t, err)
		assert.Equal(t, "speaking", text)
	}
	_, err := p.Completion(context.Background(), &llm.ChatRequest{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, p.Hits("persona"))
}

func TestMockProvider_HasTool(t *testing.T) {
	req := &llm.ChatRequest{Tools: []llm.ToolSchema{{Name: "evaluate_metrics"}}}
	assert.True(t, HasTool("evaluate_metrics")(req))
	assert.False(t, HasTool("transfer_to_director")(req))
}

func TestToolCallResponse(t *testing.T) {
	resp := ToolCallResponse("update_framework", map[string]string{"proposals": "p"})
	choice, err := llm.FirstChoice(resp)
	require.NoError(t, err)
	require.Len(t, choice.Message.ToolCalls, 1)
	assert.JSONEq(t, `{"proposals":"p"}`, string(choice.Message.ToolCalls[0].Arguments))
}
