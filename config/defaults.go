package config

import (
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
)

// DefaultConfig 返回一次完整运行的默认配置：300 回合、gpt-4o-mini、
// 温度 0.7、摘要写入当前目录的 summary.txt。监控服务与遥测默认关闭。
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:            "openai",
			Model:               "gpt-4o-mini",
			Temperature:         0.7,
			MaxTokens:           1024,
			Timeout:             time.Minute,
			MaxRetries:          3,
			BreakerThreshold:    5,
			BreakerResetTimeout: time.Minute,
		},
		Run: RunConfig{
			TotalTurns:      300,
			MaxHandoffDepth: 1,
			InitialMessage:  conversation.DefaultInitialMessage,
			MaxMessages:     100,
		},
		Store: StoreConfig{
			Backends:  []string{"file"},
			BaseDir:   ".",
			FileName:  "summary.txt",
			KeyPrefix: "policyswarm:",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			Timeout:  5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Host:            "localhost",
			Port:            5432,
			User:            "policyswarm",
			Name:            "policyswarm.db",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Report: ReportConfig{OutputDir: ".", Chart: true, Terminal: true},
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:        "info",
			Format:       "console",
			OutputPaths:  []string{"stdout"},
			EnableCaller: true,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "policyswarm",
			SampleRate:   1.0,
		},
	}
}
