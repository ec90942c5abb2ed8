package types

import (
	"errors"
	"fmt"
)

// ErrorCode 区分一次运行中失败的类别，决定它是否终止运行
type ErrorCode string

const (
	// ErrConfiguration 在第一个回合之前出现：缺少凭据、角色重名、缺少必需角色
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCompletionFailure 是补全调用失败；角色回合中致命，评估与摘要中降级
	ErrCompletionFailure ErrorCode = "COMPLETION_FAILURE"
	// ErrParseFailure 是格式正确但结构不符的响应，保留旧状态
	ErrParseFailure ErrorCode = "PARSE_FAILURE"
	// ErrProtocolViolation 是引擎无法执行的智能体响应：未知工具或不允许的交接
	ErrProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"
)

// Error 是带类别的运行错误。Retryable 从补全层错误继承。
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError 按格式串构造错误
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewConfigurationError(format string, args ...any) *Error {
	return NewError(ErrConfiguration, format, args...)
}

func NewParseFailure(format string, args ...any) *Error {
	return NewError(ErrParseFailure, format, args...)
}

// NewCompletionFailure 包装补全层错误并继承其可重试标记
func NewCompletionFailure(message string, cause error) *Error {
	return &Error{
		Code:      ErrCompletionFailure,
		Message:   message,
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// retryable 由其它包的传输错误（如 llm.Error）实现，避免反向依赖
type retryable interface {
	IsRetryable() bool
}

// IsRetryable 沿错误链查找第一个带可重试标记的错误
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	var r retryable
	return errors.As(err, &r) && r.IsRetryable()
}

// CodeOf 返回错误链上最外层的类别，没有时返回空串
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsErrorCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

func IsConfigurationError(err error) bool { return IsErrorCode(err, ErrConfiguration) }

func IsCompletionFailure(err error) bool { return IsErrorCode(err, ErrCompletionFailure) }

func IsParseFailure(err error) bool { return IsErrorCode(err, ErrParseFailure) }
