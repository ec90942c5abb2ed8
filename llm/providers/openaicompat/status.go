package openaicompat

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/policyswarm/llm"
)

// 错误体最多读取 64KB
const maxErrorBody = 64 << 10

// statusError 按 HTTP 状态码分类错误；429、5xx 与 529 可重试
func statusError(status int, msg, provider string) *llm.Error {
	e := &llm.Error{Message: msg, HTTPStatus: status, Provider: provider, Code: llm.ErrUpstreamError}
	switch {
	case status == http.StatusUnauthorized:
		e.Code = llm.ErrUnauthorized
	case status == http.StatusForbidden:
		e.Code = llm.ErrForbidden
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = llm.ErrRateLimited, true
	case status == http.StatusBadRequest && mentionsQuota(msg):
		e.Code = llm.ErrQuotaExceeded
	case status == http.StatusBadRequest:
		e.Code = llm.ErrInvalidRequest
	case status == 529:
		e.Code, e.Retryable = llm.ErrModelOverloaded, true
	default:
		e.Retryable = status >= 500
	}
	return e
}

func mentionsQuota(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "credit")
}

// transportError 表示请求未得到 HTTP 响应或响应无法解码
func transportError(provider string, err error) *llm.Error {
	return &llm.Error{
		Code:       llm.ErrUpstreamError,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Retryable:  true,
		Provider:   provider,
	}
}

// errorMessage 优先取 {"error":{"message"}}，否则返回原始文本
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return "unreadable error body"
	}
	var env errorEnvelope
	if json.Unmarshal(data, &env) == nil && env.Error.Message != "" {
		if env.Error.Type != "" {
			return env.Error.Message + " (type: " + env.Error.Type + ")"
		}
		return env.Error.Message
	}
	return strings.TrimSpace(string(data))
}
