package config

import (
	"fmt"
	"strings"

	"github.com/BaSui01/policyswarm/types"
)

var (
	storeBackends = []string{"memory", "file", "redis", "sql"}
	sqlDrivers    = []string{"postgres", "mysql", "sqlite"}
	logLevels     = []string{"debug", "info", "warn", "error"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate 收集所有问题后一次返回 ConfigurationError。
// API Key 在创建补全客户端时检查，personas 子命令不需要它。
func (c *Config) Validate() error {
	var problems []string
	check := func(bad bool, format string, args ...any) {
		if bad {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.LLM.Temperature < 0 || c.LLM.Temperature > 2, "llm.temperature must be between 0 and 2")
	check(c.LLM.MaxTokens <= 0, "llm.max_tokens must be positive")
	check(c.LLM.MaxRetries < 0, "llm.max_retries must be >= 0")
	check(c.LLM.BreakerThreshold < 0, "llm.breaker_threshold must be >= 0")
	check(c.Run.TotalTurns < 0, "run.total_turns must be >= 0")
	check(c.Run.MaxHandoffDepth < 0, "run.max_handoff_depth must be >= 0")
	check(c.Run.MaxMessages <= 0, "run.max_messages must be positive")

	usesSQL := false
	for _, b := range c.Store.Backends {
		check(!oneOf(b, storeBackends), "unknown store backend %q", b)
		usesSQL = usesSQL || b == "sql"
	}
	check(usesSQL && !oneOf(c.Database.Driver, sqlDrivers), "unknown database driver %q", c.Database.Driver)

	check(c.Server.Enabled && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535), "invalid server.http_port")
	check(!oneOf(c.Log.Level, logLevels), "invalid log level %q", c.Log.Level)
	check(c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1, "telemetry.sample_rate must be between 0 and 1")

	if len(problems) > 0 {
		return types.NewConfigurationError("config validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN 按驱动拼接连接串；未知驱动返回空串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return d.Name
	}
	return ""
}
