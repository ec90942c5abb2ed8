package openaicompat

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/BaSui01/policyswarm/llm"
	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		code      llm.ErrorCode
		retryable bool
	}{
		{"401", http.StatusUnauthorized, "Invalid API key", llm.ErrUnauthorized, false},
		{"403", http.StatusForbidden, "denied", llm.ErrForbidden, false},
		{"429", http.StatusTooManyRequests, "slow down", llm.ErrRateLimited, true},
		{"400 quota", http.StatusBadRequest, "You exceeded your current Quota", llm.ErrQuotaExceeded, false},
		{"400 credit", http.StatusBadRequest, "insufficient credit", llm.ErrQuotaExceeded, false},
		{"400 plain", http.StatusBadRequest, "bad messages", llm.ErrInvalidRequest, false},
		{"502", http.StatusBadGateway, "", llm.ErrUpstreamError, true},
		{"503", http.StatusServiceUnavailable, "", llm.ErrUpstreamError, true},
		{"529", 529, "overloaded", llm.ErrModelOverloaded, true},
		{"500", http.StatusInternalServerError, "", llm.ErrUpstreamError, true},
		{"418", http.StatusTeapot, "", llm.ErrUpstreamError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := statusError(tt.status, tt.msg, "openai")
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, tt.status, e.HTTPStatus)
			assert.Equal(t, "openai", e.Provider)
		})
	}
}

func TestTransportError(t *testing.T) {
	e := transportError("qwen", errors.New("connection reset"))
	assert.Equal(t, llm.ErrUpstreamError, e.Code)
	assert.True(t, e.IsRetryable())
	assert.Equal(t, "qwen: connection reset (status 502)", e.Error())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad key (type: invalid_request_error)",
		errorMessage(strings.NewReader(`{"error":{"message":"bad key","type":"invalid_request_error"}}`)))
	assert.Equal(t, "nope", errorMessage(strings.NewReader(`{"error":{"message":"nope"}}`)))
	assert.Equal(t, "upstream exploded", errorMessage(strings.NewReader("upstream exploded\n")))
	assert.Len(t, errorMessage(strings.NewReader(strings.Repeat("x", 2*maxErrorBody))), maxErrorBody)
}
