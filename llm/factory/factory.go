// Package factory assembles the completion client from configuration:
// an OpenAI-compatible HTTP provider wrapped with retry and rate limiting.
package factory

import (
	"sort"
	"strings"
	"time"

	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/llm/providers/openaicompat"
	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// ProviderConfig is the flat configuration accepted by NewProvider.
type ProviderConfig struct {
	Name                string        `json:"name" yaml:"name"`
	APIKey              string        `json:"api_key" yaml:"api_key"`
	BaseURL             string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model               string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout             time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxRetries          int           `json:"max_retries" yaml:"max_retries"`
	RequestsPerSecond   float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	BreakerThreshold    int           `json:"breaker_threshold" yaml:"breaker_threshold"`
	BreakerResetTimeout time.Duration `json:"breaker_reset_timeout,omitempty" yaml:"breaker_reset_timeout,omitempty"`
}

// preset 是 OpenAI 兼容服务商的默认端点
type preset struct {
	baseURL       string
	endpointPath  string
	fallbackModel string
}

var presets = map[string]preset{
	"openai":   {baseURL: "https://api.openai.com", endpointPath: "/v1/chat/completions", fallbackModel: "gpt-4o-mini"},
	"deepseek": {baseURL: "https://api.deepseek.com", endpointPath: "/chat/completions", fallbackModel: "deepseek-chat"},
	"qwen":     {baseURL: "https://dashscope.aliyuncs.com", endpointPath: "/compatible-mode/v1/chat/completions", fallbackModel: "qwen-plus"},
	"kimi":     {baseURL: "https://api.moonshot.cn", endpointPath: "/v1/chat/completions", fallbackModel: "moonshot-v1-8k"},
	"grok":     {baseURL: "https://api.x.ai", endpointPath: "/v1/chat/completions", fallbackModel: "grok-beta"},
	"mistral":  {baseURL: "https://api.mistral.ai", endpointPath: "/v1/chat/completions", fallbackModel: "mistral-small-latest"},
}

// SupportedProviders returns the preset names in sorted order.
func SupportedProviders() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider creates the resilient completion client.
// An empty API key is a configuration error: the run must not start.
func NewProvider(cfg ProviderConfig, observer llm.CompletionObserver, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.NewConfigurationError("llm api key is not set")
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = "openai"
	}
	p, ok := presets[name]
	if !ok && cfg.BaseURL == "" {
		return nil, types.NewConfigurationError("unsupported provider %q (supported: %s)",
			cfg.Name, strings.Join(SupportedProviders(), ", "))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = p.baseURL
	}
	model := cfg.Model
	if model == "" {
		model = p.fallbackModel
	}

	base := openaicompat.New(openaicompat.Config{
		Name:    name,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
		Path:    p.endpointPath,
		Model:   model,
		Timeout: cfg.Timeout,
	}, logger)

	rc := llm.DefaultResilientProviderConfig()
	rc.RetryPolicy.MaxRetries = cfg.MaxRetries
	rc.RequestsPerSecond = cfg.RequestsPerSecond
	rc.Breaker.Threshold = cfg.BreakerThreshold
	if cfg.BreakerResetTimeout > 0 {
		rc.Breaker.ResetTimeout = cfg.BreakerResetTimeout
	}

	logger.Info("completion provider ready",
		zap.String("provider", name),
		zap.String("model", model),
		zap.String("base_url", baseURL),
		zap.Int("max_retries", cfg.MaxRetries))

	return llm.NewResilientProvider(base, rc, observer, logger), nil
}
