package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer 为 OpenAI 系列模型封装 tiktoken，编码在首次计数时加载。
type TiktokenTokenizer struct {
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// modelEncodings 按模型名前缀选择编码，最长前缀优先
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4.1":       "o200k_base",
	"o1":            "o200k_base",
	"o3":            "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

const defaultEncoding = "cl100k_base"

// EncodingFor 返回模型使用的 tiktoken 编码名
func EncodingFor(model string) string {
	best, encoding := "", defaultEncoding
	for prefix, enc := range modelEncodings {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, encoding = prefix, enc
		}
	}
	return encoding
}

// NewTiktokenTokenizer 为给定模型创建基于 tiktoken 的分词器
func NewTiktokenTokenizer(model string) *TiktokenTokenizer {
	return &TiktokenTokenizer{encoding: EncodingFor(model)}
}

func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	t.once.Do(func() {
		t.enc, t.initErr = tiktoken.GetEncoding(t.encoding)
		if t.initErr != nil {
			t.initErr = fmt.Errorf("load tiktoken encoding %s: %w", t.encoding, t.initErr)
		}
	})
	if t.initErr != nil {
		return 0, t.initErr
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *TiktokenTokenizer) Name() string {
	return "tiktoken[" + t.encoding + "]"
}
