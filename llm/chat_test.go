package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/policyswarm/types"
)

func TestFirstChoice(t *testing.T) {
	_, err := FirstChoice(nil)
	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrEmptyResponse, llmErr.Code)

	_, err = FirstChoice(&ChatResponse{ID: "chatcmpl-9", Provider: "mock"})
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "mock", llmErr.Provider)
	assert.Contains(t, err.Error(), "chatcmpl-9")
	assert.False(t, types.IsRetryable(err))

	choice, err := FirstChoice(&ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "hi"}}}})
	require.NoError(t, err)
	assert.Equal(t, "hi", choice.Message.Content)
}

func TestTextOf_TrimsWhitespace(t *testing.T) {
	text, err := TextOf(&ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "  summary \n"}}}})
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
}

func TestSystemUser(t *testing.T) {
	msgs := SystemUser("sys", "usr")
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "usr", msgs[1].Content)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "openai: bad key (status 401)",
		(&Error{Message: "bad key", HTTPStatus: 401, Provider: "openai"}).Error())
	assert.Equal(t, "openai: timeout", (&Error{Message: "timeout", Provider: "openai"}).Error())
	assert.Equal(t, "no response", (&Error{Message: "no response"}).Error())
	assert.True(t, types.IsRetryable(&Error{Retryable: true}))
}
