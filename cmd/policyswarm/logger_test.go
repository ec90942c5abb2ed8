package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/policyswarm/config"
)

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewLogger_Console(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
