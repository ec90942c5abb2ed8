package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/policyswarm/internal/tlsutil"
	"github.com/BaSui01/policyswarm/llm"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultPath    = "/v1/chat/completions"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	// Name is reported in errors, logs and metrics. Defaults to "openai".
	Name    string
	APIKey  string
	BaseURL string
	// Path is appended to BaseURL. Defaults to /v1/chat/completions.
	Path  string
	Model string
	// Timeout bounds the whole request. Defaults to 60s.
	Timeout time.Duration
	// Authorize sets the credential header. Defaults to a bearer token.
	Authorize func(h http.Header, apiKey string)
}

// Provider talks to any endpoint implementing the Chat Completions API.
type Provider struct {
	cfg    Config
	url    string
	client *http.Client
	logger *zap.Logger
}

func bearer(h http.Header, apiKey string) {
	h.Set("Authorization", "Bearer "+apiKey)
}

// New applies defaults and builds the HTTP client.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Authorize == nil {
		cfg.Authorize = bearer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		url:    strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		client: tlsutil.CompletionClient(cfg.Timeout),
		logger: logger.With(zap.String("provider", cfg.Name)),
	}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Completion sends one non-streaming request. The request model wins over
// the configured one.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidRequest,
			Message:    "request has no messages",
			HTTPStatus: http.StatusBadRequest,
			Provider:   p.cfg.Name,
		}
	}
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	start := time.Now()
	reply, err := p.post(ctx, newPayload(req, model))
	if err != nil {
		return nil, err
	}
	resp := reply.toResponse(p.cfg.Name)
	p.logger.Debug("completion finished",
		zap.String("trace_id", req.TraceID),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)))
	return resp, nil
}

func (p *Provider) post(ctx context.Context, payload chatPayload) (*chatReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.cfg.Authorize(httpReq.Header, p.cfg.APIKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError(p.cfg.Name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		msg := errorMessage(httpResp.Body)
		p.logger.Debug("completion rejected", zap.Int("status", httpResp.StatusCode), zap.String("message", msg))
		return nil, statusError(httpResp.StatusCode, msg, p.cfg.Name)
	}

	var reply chatReply
	if err := json.NewDecoder(httpResp.Body).Decode(&reply); err != nil {
		return nil, transportError(p.cfg.Name, err)
	}
	return &reply, nil
}
