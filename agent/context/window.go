package context

import (
	"sync"

	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// DefaultMaxMessages 活动窗口默认条数上限
const DefaultMaxMessages = 100

// TokenCounter 是 token 计数接口，tokenizer.Tokenizer 满足该接口
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// WindowConfig 配置活动窗口
type WindowConfig struct {
	MaxMessages int `json:"max_messages" yaml:"max_messages"` // <=0 使用默认值
	MaxTokens   int `json:"max_tokens" yaml:"max_tokens"`     // 0 表示不限
	KeepLastN   int `json:"keep_last_n" yaml:"keep_last_n"`   // token 裁剪时始终保留的最新条数
}

// DefaultWindowConfig 返回默认窗口配置
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{MaxMessages: DefaultMaxMessages, KeepLastN: 1}
}

// WindowStatus 是窗口当前状态
type WindowStatus struct {
	MessageCount int `json:"message_count"`
	TotalTokens  int `json:"total_tokens"`
	MaxMessages  int `json:"max_messages"`
	MaxTokens    int `json:"max_tokens"`
	Evicted      int `json:"evicted"`
}

// Window 是按插入顺序保存的活动消息窗口
type Window struct {
	mu       sync.RWMutex
	config   WindowConfig
	counter  TokenCounter
	messages []types.Message
	evicted  int
	logger   *zap.Logger
}

// NewWindow 创建窗口，counter 可为 nil（按 len/4 估算）
func NewWindow(config WindowConfig, counter TokenCounter, logger *zap.Logger) *Window {
	if config.MaxMessages <= 0 {
		config.MaxMessages = DefaultMaxMessages
	}
	if config.KeepLastN < 0 {
		config.KeepLastN = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{
		config:  config,
		counter: counter,
		logger:  logger.With(zap.String("component", "context_window")),
	}
}

// Append 追加消息，不做裁剪
func (w *Window) Append(msgs ...types.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
}

// Trim 按条数与 token 预算裁剪，返回本次移除的条数
func (w *Window) Trim() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := len(w.messages)
	if over := len(w.messages) - w.config.MaxMessages; over > 0 {
		w.messages = append([]types.Message(nil), w.messages[over:]...)
	}
	if w.config.MaxTokens > 0 {
		w.messages = w.tokenBudget(w.messages)
	}

	removed := before - len(w.messages)
	if removed > 0 {
		w.evicted += removed
		w.logger.Debug("window trimmed",
			zap.Int("removed", removed),
			zap.Int("remaining", len(w.messages)))
	}
	return removed
}

// tokenBudget 从新到旧累计，超出预算的更早消息全部丢弃
func (w *Window) tokenBudget(messages []types.Message) []types.Message {
	keepN := w.config.KeepLastN
	if keepN > len(messages) {
		keepN = len(messages)
	}

	used := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := w.messageTokens(messages[i])
		inKeepZone := len(messages)-1-i < keepN
		if !inKeepZone && used+cost > w.config.MaxTokens {
			break
		}
		used += cost
		start = i
	}
	if start == 0 {
		return messages
	}
	return append([]types.Message(nil), messages[start:]...)
}

func (w *Window) countTokens(text string) int {
	if w.counter != nil {
		if n, err := w.counter.CountTokens(text); err == nil {
			return n
		}
	}
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}

// messageTokens 估算单条消息的 token 数（含每条 4 个 token 的开销）
func (w *Window) messageTokens(msg types.Message) int {
	tokens := w.countTokens(msg.Content) + 4
	if msg.Author != "" {
		tokens += w.countTokens(msg.Author)
	}
	return tokens
}

// Messages 返回窗口消息副本，按插入顺序
func (w *Window) Messages() []types.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]types.Message(nil), w.messages...)
}

// Len 返回当前条数
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.messages)
}

// Status 返回窗口状态
func (w *Window) Status() WindowStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := 0
	for _, m := range w.messages {
		total += w.messageTokens(m)
	}
	return WindowStatus{
		MessageCount: len(w.messages),
		TotalTokens:  total,
		MaxMessages:  w.config.MaxMessages,
		MaxTokens:    w.config.MaxTokens,
		Evicted:      w.evicted,
	}
}
