package llm

import "fmt"

// ErrorCode 是补全传输层的错误码，决定重试与熔断行为
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "LLM_INVALID_REQUEST"
	ErrUnauthorized    ErrorCode = "LLM_UNAUTHORIZED"
	ErrForbidden       ErrorCode = "LLM_FORBIDDEN"
	ErrRateLimited     ErrorCode = "LLM_RATE_LIMITED"
	ErrQuotaExceeded   ErrorCode = "LLM_QUOTA_EXCEEDED"
	ErrModelOverloaded ErrorCode = "LLM_MODEL_OVERLOADED"
	ErrUpstreamError   ErrorCode = "LLM_UPSTREAM_ERROR"
	ErrEmptyResponse   ErrorCode = "LLM_EMPTY_RESPONSE"
)

// Error 是补全服务返回的错误。Message 只含上游的错误描述，不含凭据。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.HTTPStatus)
	}
	if e.Provider != "" {
		return e.Provider + ": " + e.Message
	}
	return e.Message
}

// IsRetryable 供 types.IsRetryable 与重试器识别
func (e *Error) IsRetryable() bool { return e.Retryable }
