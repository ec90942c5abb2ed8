package memory

import (
	"strings"

	"github.com/BaSui01/policyswarm/types"
)

// SummarySystemPrompt 摘要请求的 system 消息
const SummarySystemPrompt = "You are a helpful assistant that summarizes conversations."

// NothingToSummarize 是没有任何可摘要内容时的最终摘要
const NothingToSummarize = "No additional summaries to produce."

var levelInstructions = map[types.SummaryLevel]string{
	types.SummaryLevel10:    "Summarize the key points and developments from the last 10 turns of the conversation in a clear and concise manner.",
	types.SummaryLevel100:   "Summarize the key points and developments from the last 100 turns of the conversation based on the provided 10-turn summaries.",
	types.SummaryLevel1000:  "Summarize the key points and developments from the last 1000 turns of the conversation based on the provided 100-turn summaries.",
	types.SummaryLevelFinal: "Provide a comprehensive summary of the conversation based on the provided high-level summaries and recent messages.",
}

// Instruction 返回该级摘要的指令
func Instruction(level types.SummaryLevel) string {
	if s, ok := levelInstructions[level]; ok {
		return s
	}
	return "Summarize the provided content."
}

const summaryPromptTemplate = `
You are an AI assistant tasked with summarizing the following conversation snippets.

**Instructions:**
- {{.Instruction}}
- Provide a clear and friendly summary of the key points and developments.
- Focus on the main ideas, proposals, decisions, and any significant changes in metrics or political leaning.
- The summary should be easy to read and understand.

**Content to Summarize:**
{{.Content}}

**Summary Type:** {{.Level}}
`

// BuildPrompt 构建摘要提示
func BuildPrompt(level types.SummaryLevel, content string) string {
	return strings.NewReplacer(
		"{{.Instruction}}", Instruction(level),
		"{{.Content}}", content,
		"{{.Level}}", string(level),
	).Replace(summaryPromptTemplate)
}
