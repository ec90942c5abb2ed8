package handoff

import (
	"encoding/json"
	"testing"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *agent.Registry {
	t.Helper()
	reg, err := agent.NewRegistry([]agent.Definition{
		{Name: agent.RootName, Instructions: "lead"},
		{Name: "Economic Strategist", Instructions: "economy"},
		{Name: "Social Welfare Advocate", Instructions: "welfare"},
		{Name: agent.EvaluatorName, Instructions: "score"},
	})
	require.NoError(t, err)
	return reg
}

func call(name string, args string) llm.ToolCall {
	return llm.ToolCall{ID: "call_" + name, Name: name, Arguments: json.RawMessage(args)}
}

func TestResolve_NoCalls(t *testing.T) {
	reg := testRegistry(t)
	d, err := Resolve(reg, reg.Root(), nil)
	require.NoError(t, err)
	assert.Equal(t, KindNone, d.Kind)
	assert.Nil(t, d.Target)
	assert.Empty(t, d.Edits)
}

func TestResolve_Transfer(t *testing.T) {
	reg := testRegistry(t)
	d, err := Resolve(reg, reg.Root(), []llm.ToolCall{call("transfer_to_economic_strategist", "")})
	require.NoError(t, err)
	assert.Equal(t, KindTransfer, d.Kind)
	require.NotNil(t, d.Target)
	assert.Equal(t, "Economic Strategist", d.Target.Name())
	assert.Equal(t, "call_transfer_to_economic_strategist", d.CallID)
}

func TestResolve_FirstControlWins(t *testing.T) {
	reg := testRegistry(t)
	d, err := Resolve(reg, reg.Root(), []llm.ToolCall{
		call(agent.ToolUpdateFramework, `{"proposals":"P1"}`),
		call("transfer_to_social_welfare_advocate", "{}"),
		call(agent.ToolEvaluateFramework, `{"decisions":"D1"}`),
		call("transfer_to_economic_strategist", "{}"),
	})
	require.NoError(t, err)
	assert.Equal(t, KindTransfer, d.Kind)
	assert.Equal(t, "Social Welfare Advocate", d.Target.Name())
	assert.Equal(t, []string{agent.ToolEvaluateFramework, "transfer_to_economic_strategist"}, d.Ignored)

	// 被忽略的评估调用携带的编辑仍然生效
	require.Len(t, d.Edits, 2)
	assert.Equal(t, "P1", *d.Edits[0].Proposals)
	assert.Nil(t, d.Edits[0].Decisions)
	assert.Equal(t, "D1", *d.Edits[1].Decisions)
}

func TestResolve_Evaluate(t *testing.T) {
	reg := testRegistry(t)

	d, err := Resolve(reg, reg.Root(), []llm.ToolCall{call(agent.ToolEvaluateFramework, "")})
	require.NoError(t, err)
	assert.Equal(t, KindEvaluate, d.Kind)
	assert.Empty(t, d.Edits)

	d, err = Resolve(reg, reg.Evaluator(), []llm.ToolCall{
		call(agent.ToolEvaluateMetrics, `{"proposals":"A","decisions":"B"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, KindEvaluate, d.Kind)
	require.Len(t, d.Edits, 1)
	assert.Equal(t, "A", *d.Edits[0].Proposals)
	assert.Equal(t, "B", *d.Edits[0].Decisions)
}

func TestResolve_EmptyStringEditIsKept(t *testing.T) {
	reg := testRegistry(t)
	d, err := Resolve(reg, reg.Root(), []llm.ToolCall{call(agent.ToolUpdateFramework, `{"decisions":""}`)})
	require.NoError(t, err)
	require.Len(t, d.Edits, 1)
	require.NotNil(t, d.Edits[0].Decisions)
	assert.Equal(t, "", *d.Edits[0].Decisions)
}

func TestResolve_Violations(t *testing.T) {
	reg := testRegistry(t)
	econ, _ := reg.Get("Economic Strategist")

	tests := []struct {
		name  string
		from  *agent.Agent
		calls []llm.ToolCall
	}{
		{"unknown tool", reg.Root(), []llm.ToolCall{call("launch_rockets", "{}")}},
		{"self transfer", econ, []llm.ToolCall{call("transfer_to_economic_strategist", "{}")}},
		{"unknown target", reg.Root(), []llm.ToolCall{call("transfer_to_nobody", "{}")}},
		{"evaluator transfers", reg.Evaluator(), []llm.ToolCall{call("transfer_to_director", "{}")}},
		{"evaluator updates", reg.Evaluator(), []llm.ToolCall{call(agent.ToolUpdateFramework, "{}")}},
		{"persona uses evaluator tool", econ, []llm.ToolCall{call(agent.ToolEvaluateMetrics, "{}")}},
		{"bad arguments", reg.Root(), []llm.ToolCall{call(agent.ToolUpdateFramework, `{"proposals":42}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(reg, tt.from, tt.calls)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.ErrProtocolViolation))
		})
	}
}
