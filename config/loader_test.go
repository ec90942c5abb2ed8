// 配置加载器测试。
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/BaSui01/policyswarm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearLegacyEnv 屏蔽宿主机上可能存在的旧版变量
func clearLegacyEnv(t *testing.T) {
	t.Helper()
	for _, lv := range legacyVars {
		t.Setenv(lv.key, "")
	}
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	clearLegacyEnv(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 300, cfg.Run.TotalTurns)
	assert.Equal(t, []string{"file"}, cfg.Store.Backends)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	clearLegacyEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
llm:
  provider: deepseek
  model: deepseek-chat
  temperature: 0.2
  max_tokens: 2048
  timeout: 90s

run:
  total_turns: 25
  max_handoff_depth: 2
  personas_file: personas.yaml

summary:
  flush_partial_windows: true

store:
  backends: [file, redis]
  base_dir: /tmp/out

redis:
  addr: "redis.example.com:6379"
  password: "secret"
  db: 1

log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)

	assert.Equal(t, 25, cfg.Run.TotalTurns)
	assert.Equal(t, 2, cfg.Run.MaxHandoffDepth)
	assert.Equal(t, "personas.yaml", cfg.Run.PersonasFile)
	assert.True(t, cfg.Summary.FlushPartialWindows)

	assert.Equal(t, []string{"file", "redis"}, cfg.Store.Backends)
	assert.Equal(t, "/tmp/out", cfg.Store.BaseDir)
	assert.Equal(t, "summary.txt", cfg.Store.FileName)

	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("POLICYSWARM_LLM_MODEL", "gpt-4o")
	t.Setenv("POLICYSWARM_LLM_TEMPERATURE", "0.9")
	t.Setenv("POLICYSWARM_RUN_TOTAL_TURNS", "40")
	t.Setenv("POLICYSWARM_STORE_BACKENDS", "file, sql")
	t.Setenv("POLICYSWARM_SERVER_ENABLED", "true")
	t.Setenv("POLICYSWARM_REDIS_TIMEOUT", "2s")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 0.9, cfg.LLM.Temperature)
	assert.Equal(t, 40, cfg.Run.TotalTurns)
	assert.Equal(t, []string{"file", "sql"}, cfg.Store.Backends)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Redis.Timeout)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	clearLegacyEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("run:\n  total_turns: 10\nllm:\n  model: yaml-model\n"), 0644))

	t.Setenv("POLICYSWARM_RUN_TOTAL_TURNS", "99")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.Run.TotalTurns)
	assert.Equal(t, "yaml-model", cfg.LLM.Model)
}

func TestLoader_LegacyEnv(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	t.Setenv("OPENAI_TEMPERATURE", "0.3")
	t.Setenv("OPENAI_MAX_TOKENS", "512")
	t.Setenv("MAX_TURNS", "15")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-legacy", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.Equal(t, 15, cfg.Run.TotalTurns)
}

func TestLoader_PrefixedEnvWinsOverLegacy(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("MAX_TURNS", "15")
	t.Setenv("POLICYSWARM_RUN_TOTAL_TURNS", "30")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Run.TotalTurns)
}

func TestLoader_LegacyEnvDisabled(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("MAX_TURNS", "15")

	cfg, err := NewLoader().WithLegacyEnv(false).Load()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Run.TotalTurns)
}

func TestLoader_InvalidLegacyValue(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("MAX_TURNS", "many")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestLoader_DotEnv(t *testing.T) {
	clearLegacyEnv(t)
	// godotenv 不覆盖已存在的变量，先确保变量不存在
	t.Setenv("POLICYSWARM_LLM_PROVIDER", "")
	os.Unsetenv("POLICYSWARM_LLM_PROVIDER")
	t.Cleanup(func() { os.Unsetenv("POLICYSWARM_LLM_PROVIDER") })

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("POLICYSWARM_LLM_PROVIDER=qwen\n"), 0644))

	cfg, err := NewLoader().
		WithDotEnv(envPath, filepath.Join(t.TempDir(), "missing.env")).
		Load()
	require.NoError(t, err)
	assert.Equal(t, "qwen", cfg.LLM.Provider)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("MYAPP_RUN_TOTAL_TURNS", "7")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Run.TotalTurns)
}

func TestLoader_NonExistentFile(t *testing.T) {
	clearLegacyEnv(t)
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Run.TotalTurns)
}

func TestLoader_InvalidYAML(t *testing.T) {
	clearLegacyEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("run: [unclosed"), 0644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

// Load 只合并，校验留给调用方
func TestLoader_LoadDoesNotValidate(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("POLICYSWARM_LLM_TEMPERATURE", "3")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.LLM.Temperature)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, types.IsConfigurationError(err))
}

func TestLoader_InvalidPrefixedValue(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("POLICYSWARM_SERVER_READ_TIMEOUT", "soon")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLICYSWARM_SERVER_READ_TIMEOUT")
}

func TestDecodeInto(t *testing.T) {
	var target struct {
		S  string
		N  int
		F  float64
		B  bool
		D  time.Duration
		L  []string
		U8 uint8
	}
	v := reflect.ValueOf(&target).Elem()

	require.NoError(t, decodeInto(v.Field(0), "x"))
	require.NoError(t, decodeInto(v.Field(1), "42"))
	require.NoError(t, decodeInto(v.Field(2), "0.5"))
	require.NoError(t, decodeInto(v.Field(3), "true"))
	require.NoError(t, decodeInto(v.Field(4), "1m30s"))
	require.NoError(t, decodeInto(v.Field(5), " a, b ,c"))
	assert.Error(t, decodeInto(v.Field(6), "1"))
	assert.Error(t, decodeInto(v.Field(1), "forty"))

	assert.Equal(t, "x", target.S)
	assert.Equal(t, 42, target.N)
	assert.Equal(t, 0.5, target.F)
	assert.True(t, target.B)
	assert.Equal(t, 90*time.Second, target.D)
	assert.Equal(t, []string{"a", "b", "c"}, target.L)
}

// --- 验证测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero turns", func(c *Config) { c.Run.TotalTurns = 0 }, false},
		{"negative turns", func(c *Config) { c.Run.TotalTurns = -1 }, true},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 2.5 }, true},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, true},
		{"negative handoff depth", func(c *Config) { c.Run.MaxHandoffDepth = -1 }, true},
		{"negative breaker threshold", func(c *Config) { c.LLM.BreakerThreshold = -1 }, true},
		{"breaker disabled", func(c *Config) { c.LLM.BreakerThreshold = 0 }, false},
		{"unknown backend", func(c *Config) { c.Store.Backends = []string{"s3"} }, true},
		{"sql with bad driver", func(c *Config) {
			c.Store.Backends = []string{"sql"}
			c.Database.Driver = "oracle"
		}, true},
		{"server bad port", func(c *Config) {
			c.Server.Enabled = true
			c.Server.HTTPPort = 70000
		}, true},
		{"disabled server ignores port", func(c *Config) { c.Server.HTTPPort = 0 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"bad sample rate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, types.IsConfigurationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", pg.DSN())

	my := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "u:p@tcp(db:3306)/n?parseTime=true", my.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Name: "run.db"}
	assert.Equal(t, "run.db", lite.DSN())

	assert.Empty(t, (&DatabaseConfig{Driver: "oracle"}).DSN())
}
