package config

import (
	"testing"
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.LLM.APIKey)
	assert.NotEmpty(t, cfg.Log.OutputPaths)
}

func TestDefaultConfig_Run(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.LLM.BreakerThreshold)

	assert.Equal(t, 300, cfg.Run.TotalTurns)
	assert.Equal(t, 1, cfg.Run.MaxHandoffDepth)
	assert.Equal(t, 100, cfg.Run.MaxMessages)
	assert.Equal(t, conversation.DefaultInitialMessage, cfg.Run.InitialMessage)
	assert.Empty(t, cfg.Run.PersonasFile)
	assert.False(t, cfg.Summary.FlushPartialWindows)
	assert.Equal(t, []string{"file"}, cfg.Store.Backends)
}

func TestDefaultConfig_OptionalSurfacesOff(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "policyswarm", cfg.Telemetry.ServiceName)
}

// 每次调用返回独立副本
func TestDefaultConfig_Independent(t *testing.T) {
	a, b := DefaultConfig(), DefaultConfig()
	a.Store.Backends[0] = "redis"
	assert.Equal(t, "file", b.Store.Backends[0])
}
