// Package evaluation scores the policy framework into four metrics and a
// political leaning through one structured completion call.
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// Status 评估结果状态
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusEvaluated Status = "evaluated"
	StatusFailed    Status = "failed"
)

// Result 是一次成功评估得到的指标与倾向
type Result struct {
	Metrics framework.Metrics `json:"metrics"`
	Leaning float64           `json:"political_leaning"`
}

// Outcome 是 Evaluate 的返回值；Failed 时 Raw 保留原始响应用于诊断
type Outcome struct {
	Status Status
	Result Result
	Raw    string
}

// SystemPrompt 是评估请求的 system 消息
const SystemPrompt = "You are an AI assistant that evaluates political proposals and decisions."

// PromptTemplate 评估提示模板
const PromptTemplate = `You are an AI assistant tasked with evaluating a set of political proposals and decisions. Based on the provided information, determine the following metrics:

1. **Economy**: Rate the potential impact on economic growth and sustainability.
2. **Fairness**: Assess how the proposals and decisions promote fairness and protect consumer rights.
3. **Equality**: Evaluate the measures taken to ensure equal opportunities and reduce societal disparities.
4. **Technological Progress**: Analyze how the policies encourage technological innovation and oversight.

Additionally, determine the overall political leaning of the proposals and decisions on a scale from -1 to 1, where -1 is extremely left-leaning, 0 is centrist, and 1 is extremely right-leaning.

**Proposals:**
{{.Proposals}}

**Decisions:**
{{.Decisions}}

**Current Political Leaning:** {{.Leaning}}

**Instructions:**
- Provide a score for each metric (economy, fairness, equality, technological_progress) on a scale from 0 to 1, where 0 is the lowest impact and 1 is the highest.
- Provide the overall political leaning score.
- **Ensure that your response strictly follows the JSON format specified below. Do not include any additional text or explanations.**
- Format your response as a JSON object with the following structure:

{
    "metrics": {
        "economy": float,
        "fairness": float,
        "equality": float,
        "technological_progress": float
    },
    "political_leaning": float
}
`

// Evaluator 对提案与决议打分，从不修改共享上下文
type Evaluator struct {
	provider llm.Provider
	model    agent.ModelConfig
	logger   *zap.Logger
}

// New 创建评估器
func New(provider llm.Provider, model agent.ModelConfig, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("component", "evaluator")),
	}
}

// Evaluate 评估当前框架。
// 两段文本都为空白时直接返回 Skipped，不调用补全服务。
// 补全失败返回 CompletionFailure，形状或取值不合法返回 ParseFailure；两种情况 Status 都是 Failed。
func (e *Evaluator) Evaluate(ctx context.Context, proposals, decisions string, leaning float64) (Outcome, error) {
	if strings.TrimSpace(proposals) == "" && strings.TrimSpace(decisions) == "" {
		e.logger.Debug("no proposals or decisions, skipping evaluation")
		return Outcome{Status: StatusSkipped}, nil
	}

	ctx = types.WithPhase(ctx, "evaluation")
	traceID, _ := types.RunID(ctx)
	req := &llm.ChatRequest{
		TraceID:        traceID,
		Model:          e.model.Model,
		Messages:       llm.SystemUser(SystemPrompt, BuildPrompt(proposals, decisions, leaning)),
		MaxTokens:      e.model.MaxTokens,
		Temperature:    e.model.Temperature,
		ResponseFormat: "json_object",
	}

	e.logger.Debug("evaluating framework",
		zap.String("proposals", proposals),
		zap.String("decisions", decisions),
		zap.Float64("current_leaning", leaning))

	resp, err := e.provider.Completion(ctx, req)
	if err != nil {
		e.logger.Warn("evaluation completion failed", zap.Error(err))
		return Outcome{Status: StatusFailed}, types.NewCompletionFailure("evaluation request failed", err)
	}
	raw, err := llm.TextOf(resp)
	if err != nil {
		return Outcome{Status: StatusFailed}, types.NewCompletionFailure("evaluation returned no choices", err)
	}

	result, err := Parse(raw)
	if err != nil {
		e.logger.Warn("evaluation response rejected",
			zap.String("response", raw),
			zap.Error(err))
		return Outcome{Status: StatusFailed, Raw: raw}, err
	}

	e.logger.Info("framework evaluated",
		zap.Float64("economy", result.Metrics.Economy),
		zap.Float64("fairness", result.Metrics.Fairness),
		zap.Float64("equality", result.Metrics.Equality),
		zap.Float64("technological_progress", result.Metrics.TechnologicalProgress),
		zap.Float64("political_leaning", result.Leaning))
	return Outcome{Status: StatusEvaluated, Result: result, Raw: raw}, nil
}

// BuildPrompt 构建评估提示
func BuildPrompt(proposals, decisions string, leaning float64) string {
	return strings.NewReplacer(
		"{{.Proposals}}", proposals,
		"{{.Decisions}}", decisions,
		"{{.Leaning}}", strconv.FormatFloat(leaning, 'g', -1, 64),
	).Replace(PromptTemplate)
}

// wireMetrics 与 wireResult 使用指针以区分缺失字段与零值
type wireMetrics struct {
	Economy               *float64 `json:"economy"`
	Fairness              *float64 `json:"fairness"`
	Equality              *float64 `json:"equality"`
	TechnologicalProgress *float64 `json:"technological_progress"`
}

type wireResult struct {
	Metrics *wireMetrics `json:"metrics"`
	Leaning *float64     `json:"political_leaning"`
}

// Parse 严格解析评估响应：必须恰好是一个 JSON 对象，
// 不允许多余字段、缺失字段、前后缀文字或越界取值。越界值不会被截断。
func Parse(raw string) (Result, error) {
	body := bytes.TrimSpace([]byte(raw))
	if len(body) == 0 || body[0] != '{' {
		return Result{}, types.NewParseFailure("evaluation response is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var w wireResult
	if err := dec.Decode(&w); err != nil {
		return Result{}, types.NewParseFailure("decode evaluation: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Result{}, types.NewParseFailure("trailing content after evaluation object")
	}

	if w.Metrics == nil {
		return Result{}, types.NewParseFailure("missing key: metrics")
	}
	if w.Leaning == nil {
		return Result{}, types.NewParseFailure("missing key: political_leaning")
	}
	missing := make([]string, 0, 4)
	if w.Metrics.Economy == nil {
		missing = append(missing, "economy")
	}
	if w.Metrics.Fairness == nil {
		missing = append(missing, "fairness")
	}
	if w.Metrics.Equality == nil {
		missing = append(missing, "equality")
	}
	if w.Metrics.TechnologicalProgress == nil {
		missing = append(missing, "technological_progress")
	}
	if len(missing) > 0 {
		return Result{}, types.NewParseFailure("missing metrics: %s", strings.Join(missing, ", "))
	}

	res := Result{
		Metrics: framework.Metrics{
			Economy:               *w.Metrics.Economy,
			Fairness:              *w.Metrics.Fairness,
			Equality:              *w.Metrics.Equality,
			TechnologicalProgress: *w.Metrics.TechnologicalProgress,
		},
		Leaning: *w.Leaning,
	}
	if err := res.Metrics.Validate(); err != nil {
		return Result{}, types.NewParseFailure("%v", err)
	}
	if err := framework.ValidateLeaning(res.Leaning); err != nil {
		return Result{}, types.NewParseFailure("%v", err)
	}
	return res, nil
}

// Apply 把成功的评估写入共享上下文；其余状态不做任何修改
func Apply(ctx *framework.SharedContext, out Outcome) bool {
	if out.Status != StatusEvaluated {
		return false
	}
	ctx.ApplyEvaluation(out.Result.Metrics, out.Result.Leaning)
	return true
}

// String 实现 fmt.Stringer
func (r Result) String() string {
	return fmt.Sprintf("economy=%.2f fairness=%.2f equality=%.2f tech=%.2f leaning=%.2f",
		r.Metrics.Economy, r.Metrics.Fairness, r.Metrics.Equality, r.Metrics.TechnologicalProgress, r.Leaning)
}
