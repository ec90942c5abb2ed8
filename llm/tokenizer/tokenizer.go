package tokenizer

import (
	"sync"

	"go.uber.org/zap"
)

// Tokenizer 计算单段文本的 token 数，活动窗口据此执行 token 预算裁剪。
type Tokenizer interface {
	CountTokens(text string) (int, error)
	Name() string
}

// ForModel 返回模型对应的分词器：优先 tiktoken，
// 编码数据不可用时（如离线环境）降级为估算器。
func ForModel(model string, logger *zap.Logger) Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackTokenizer{
		primary:  NewTiktokenTokenizer(model),
		fallback: Estimator{},
		logger: logger.With(
			zap.String("component", "tokenizer"),
			zap.String("model", model)),
	}
}

// fallbackTokenizer 在主分词器首次失败后永久切换到估算器
type fallbackTokenizer struct {
	primary  Tokenizer
	fallback Tokenizer
	logger   *zap.Logger

	mu       sync.Mutex
	degraded bool
}

func (f *fallbackTokenizer) CountTokens(text string) (int, error) {
	f.mu.Lock()
	degraded := f.degraded
	f.mu.Unlock()
	if degraded {
		return f.fallback.CountTokens(text)
	}

	n, err := f.primary.CountTokens(text)
	if err == nil {
		return n, nil
	}

	f.mu.Lock()
	if !f.degraded {
		f.degraded = true
		f.logger.Warn("tokenizer unavailable, window budget uses estimates",
			zap.String("tokenizer", f.primary.Name()),
			zap.Error(err))
	}
	f.mu.Unlock()
	return f.fallback.CountTokens(text)
}

func (f *fallbackTokenizer) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		return f.fallback.Name()
	}
	return f.primary.Name()
}
