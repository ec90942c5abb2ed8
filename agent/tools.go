package agent

import (
	"encoding/json"
	"strings"

	"github.com/BaSui01/policyswarm/llm"
)

// 工具名称
const (
	ToolEvaluateFramework = "evaluate_framework"
	ToolEvaluateMetrics   = "evaluate_metrics"
	ToolUpdateFramework   = "update_framework"
	TransferToolPrefix    = "transfer_to_"
)

// frameworkParams 描述 proposals/decisions 两个可选文本参数
var frameworkParams = json.RawMessage(`{
  "type": "object",
  "properties": {
    "proposals": {"type": "string", "description": "Full current text of the framework proposals."},
    "decisions": {"type": "string", "description": "Full current text of the decisions taken so far."}
  }
}`)

var emptyParams = json.RawMessage(`{"type":"object","properties":{}}`)

// TransferToolName 返回转交到指定角色的工具名
func TransferToolName(target string) string {
	return TransferToolPrefix + ToolSlug(target)
}

// IsTransferTool 判断工具名是否为转交工具
func IsTransferTool(name string) bool {
	return strings.HasPrefix(name, TransferToolPrefix)
}

func transferTool(target string) llm.ToolSchema {
	return llm.ToolSchema{
		Name:        TransferToolName(target),
		Description: "Hand the conversation over to " + target + " for the rest of this turn.",
		Parameters:  emptyParams,
	}
}

func evaluateFrameworkTool() llm.ToolSchema {
	return llm.ToolSchema{
		Name: ToolEvaluateFramework,
		Description: "Evaluate the current political framework: score economy, fairness, equality and " +
			"technological progress, and determine the overall political leaning. " +
			"Pass proposals/decisions to record them in the framework before scoring.",
		Parameters: frameworkParams,
	}
}

func evaluateMetricsTool() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        ToolEvaluateMetrics,
		Description: "Score the current proposals and decisions and determine the political leaning.",
		Parameters:  frameworkParams,
	}
}

func updateFrameworkTool() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        ToolUpdateFramework,
		Description: "Replace the framework proposals and/or decisions with new text. Omitted fields are left unchanged.",
		Parameters:  frameworkParams,
	}
}
