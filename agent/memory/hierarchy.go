package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BufferCapacity 每级缓冲区容量
const BufferCapacity = 10

// SummaryLog 是摘要审计日志，persistence 包提供实现
type SummaryLog interface {
	Append(ctx context.Context, s types.Summary) error
}

// Buffers 是三个缓冲区的快照
type Buffers struct {
	Messages []string `json:"messages"`
	Tens     []string `json:"ten_turn_summaries"`
	Hundreds []string `json:"hundred_turn_summaries"`
}

// Hierarchy 管理三级摘要缓冲区与级联
type Hierarchy struct {
	provider llm.Provider
	model    agent.ModelConfig
	log      SummaryLog
	logger   *zap.Logger

	messages *FIFO[string]
	tens     *FIFO[string]
	hundreds *FIFO[string]

	mu       sync.RWMutex
	produced []types.Summary
}

// NewHierarchy 创建分层摘要器，log 可为 nil
func NewHierarchy(provider llm.Provider, model agent.ModelConfig, log SummaryLog, logger *zap.Logger) *Hierarchy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hierarchy{
		provider: provider,
		model:    model,
		log:      log,
		logger:   logger.With(zap.String("component", "summarizer")),
		messages: NewFIFO[string](BufferCapacity),
		tens:     NewFIFO[string](BufferCapacity),
		hundreds: NewFIFO[string](BufferCapacity),
	}
}

// Record 把一个回合的最终消息放入最近 10 回合缓冲区
func (h *Hierarchy) Record(message string) {
	h.messages.Push(message)
}

// MaybeSummarize 在回合 turn 结束后按 10/100/1000 顺序检查触发条件，
// 返回本回合生成的摘要。
func (h *Hierarchy) MaybeSummarize(ctx context.Context, turn int) []types.Summary {
	if turn <= 0 {
		return nil
	}
	var out []types.Summary

	if turn%10 == 0 && h.messages.Len() > 0 {
		s := h.summarize(ctx, types.SummaryLevel10, h.messages.Items(), turn)
		h.tens.Push(s.Text)
		out = append(out, s)
	}
	if turn%100 == 0 && h.tens.Len() > 0 {
		s := h.summarize(ctx, types.SummaryLevel100, h.tens.Items(), turn)
		h.hundreds.Push(s.Text)
		out = append(out, s)
	}
	if turn%1000 == 0 {
		if h.hundreds.Len() > 0 {
			out = append(out, h.summarize(ctx, types.SummaryLevel1000, h.hundreds.Items(), turn))
		}
		h.messages.Clear()
		h.tens.Clear()
		h.hundreds.Clear()
		h.logger.Info("summary buffers rolled over", zap.Int("turn", turn))
	}
	return out
}

// Flush 为未对齐的尾部窗口补充摘要（totalTurns 不是 10/100/1000 的倍数时）
func (h *Hierarchy) Flush(ctx context.Context, totalTurns int) []types.Summary {
	var out []types.Summary
	if totalTurns%10 != 0 && h.messages.Len() > 0 {
		s := h.summarize(ctx, types.SummaryLevel10, h.messages.Items(), totalTurns)
		h.tens.Push(s.Text)
		out = append(out, s)
	}
	if totalTurns%100 != 0 && h.tens.Len() > 0 {
		s := h.summarize(ctx, types.SummaryLevel100, h.tens.Items(), totalTurns)
		h.hundreds.Push(s.Text)
		out = append(out, s)
	}
	if totalTurns%1000 != 0 && h.hundreds.Len() > 0 {
		out = append(out, h.summarize(ctx, types.SummaryLevel1000, h.hundreds.Items(), totalTurns))
	}
	return out
}

// FinalContent 按粒度从粗到细收集最终摘要的输入
func (h *Hierarchy) FinalContent(totalTurns int) string {
	if totalTurns <= 0 {
		return ""
	}
	var b strings.Builder
	add := func(items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(strings.Join(items, "\n"))
		b.WriteByte('\n')
	}
	add(h.hundreds.Last(totalTurns / 100))
	add(h.tens.Last((totalTurns % 100) / 10))
	add(h.messages.Last(totalTurns % 10))
	return b.String()
}

// FinalSummary 生成最终摘要；没有内容时返回 NothingToSummarize 且不发起调用
func (h *Hierarchy) FinalSummary(ctx context.Context, totalTurns int) types.Summary {
	return h.finalFrom(ctx, h.FinalContent(totalTurns), totalTurns)
}

// Finish 结束运行：先收集最终摘要的输入，flush 为真时再补充尾部摘要，最后生成最终摘要。
// 尾部摘要不会进入最终摘要的输入。
func (h *Hierarchy) Finish(ctx context.Context, totalTurns int, flush bool) (types.Summary, []types.Summary) {
	content := h.FinalContent(totalTurns)
	var flushed []types.Summary
	if flush {
		flushed = h.Flush(ctx, totalTurns)
	}
	return h.finalFrom(ctx, content, totalTurns), flushed
}

func (h *Hierarchy) finalFrom(ctx context.Context, content string, totalTurns int) types.Summary {
	if strings.TrimSpace(content) == "" {
		h.logger.Info("nothing to summarize", zap.Int("total_turns", totalTurns))
		return types.Summary{
			ID:        uuid.NewString(),
			RunID:     runID(ctx),
			Level:     types.SummaryLevelFinal,
			Turn:      totalTurns,
			Text:      NothingToSummarize,
			CreatedAt: time.Now(),
		}
	}
	return h.summarizeText(ctx, types.SummaryLevelFinal, content, totalTurns)
}

func (h *Hierarchy) summarize(ctx context.Context, level types.SummaryLevel, items []string, turn int) types.Summary {
	return h.summarizeText(ctx, level, strings.Join(items, "\n"), turn)
}

// summarizeText 失败时返回空文本，不向上传播错误
func (h *Hierarchy) summarizeText(ctx context.Context, level types.SummaryLevel, content string, turn int) types.Summary {
	s := types.Summary{
		ID:        uuid.NewString(),
		RunID:     runID(ctx),
		Level:     level,
		Turn:      turn,
		CreatedAt: time.Now(),
	}
	logger := h.logger.With(zap.String("level", string(level)), zap.Int("turn", turn))

	ctx = types.WithPhase(ctx, "summary")
	req := &llm.ChatRequest{
		TraceID:     s.RunID,
		Model:       h.model.Model,
		Messages:    llm.SystemUser(SummarySystemPrompt, BuildPrompt(level, content)),
		MaxTokens:   h.model.MaxTokens,
		Temperature: h.model.Temperature,
		Metadata:    map[string]string{"summary_level": string(level)},
	}
	resp, err := h.provider.Completion(ctx, req)
	if err == nil {
		s.Text, err = llm.TextOf(resp)
	}
	if err != nil {
		logger.Warn("summarization failed", zap.Error(err))
		s.Text = ""
	} else if s.Text == "" {
		logger.Warn("summarization returned empty text")
	} else {
		logger.Info("summary produced", zap.String("summary", s.Text))
	}

	h.mu.Lock()
	h.produced = append(h.produced, s)
	h.mu.Unlock()

	if h.log != nil && s.Text != "" {
		if err := h.log.Append(ctx, s); err != nil {
			logger.Warn("failed to persist summary", zap.Error(err))
		}
	}
	return s
}

// Summaries 返回本次运行生成的全部摘要（含失败的空摘要），按生成顺序
func (h *Hierarchy) Summaries() []types.Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]types.Summary(nil), h.produced...)
}

// CountLevel 返回某级摘要的生成次数
func (h *Hierarchy) CountLevel(level types.SummaryLevel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, s := range h.produced {
		if s.Level == level {
			n++
		}
	}
	return n
}

// Buffers 返回缓冲区快照
func (h *Hierarchy) Buffers() Buffers {
	return Buffers{
		Messages: h.messages.Items(),
		Tens:     h.tens.Items(),
		Hundreds: h.hundreds.Items(),
	}
}

func runID(ctx context.Context) string {
	id, _ := types.RunID(ctx)
	return id
}
