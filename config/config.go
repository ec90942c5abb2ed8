package config

import "time"

// Config 是 policyswarm 的完整配置。env tag 与前缀拼接成环境变量名，
// 例如 POLICYSWARM_LLM_MODEL。
type Config struct {
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Run       RunConfig       `yaml:"run" env:"RUN"`
	Summary   SummaryConfig   `yaml:"summary" env:"SUMMARY"`
	Store     StoreConfig     `yaml:"store" env:"STORE"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	Database  DatabaseConfig  `yaml:"database" env:"DATABASE"`
	Report    ReportConfig    `yaml:"report" env:"REPORT"`
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// LLMConfig 描述补全服务与弹性策略
type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"PROVIDER"` // openai, deepseek, qwen, kimi, grok, mistral
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"` // 为空时使用服务商预设
	Model       string        `yaml:"model" env:"MODEL"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`

	MaxRetries          int           `yaml:"max_retries" env:"MAX_RETRIES"`
	RequestsPerSecond   float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"` // <= 0 不限流
	BreakerThreshold    int           `yaml:"breaker_threshold" env:"BREAKER_THRESHOLD"`     // 0 关闭熔断
	BreakerResetTimeout time.Duration `yaml:"breaker_reset_timeout" env:"BREAKER_RESET_TIMEOUT"`
}

// RunConfig 控制一次对话运行
type RunConfig struct {
	TotalTurns      int    `yaml:"total_turns" env:"TOTAL_TURNS"`
	MaxHandoffDepth int    `yaml:"max_handoff_depth" env:"MAX_HANDOFF_DEPTH"` // 单回合内的交接上限
	InitialMessage  string `yaml:"initial_message" env:"INITIAL_MESSAGE"`
	PersonasFile    string `yaml:"personas_file" env:"PERSONAS_FILE"` // 为空时使用内置角色
	MaxMessages     int    `yaml:"max_messages" env:"MAX_MESSAGES"`
	WindowTokens    int    `yaml:"window_tokens" env:"WINDOW_TOKENS"` // <= 0 不按 token 裁剪
}

type SummaryConfig struct {
	// 运行结束时为未满的尾部窗口补一次摘要
	FlushPartialWindows bool   `yaml:"flush_partial_windows" env:"FLUSH_PARTIAL_WINDOWS"`
	Model               string `yaml:"model" env:"MODEL"` // 为空时沿用 llm.model
}

// StoreConfig 选择摘要日志后端，列出多个时同时写入
type StoreConfig struct {
	Backends  []string `yaml:"backends" env:"BACKENDS"` // memory, file, redis, sql
	BaseDir   string   `yaml:"base_dir" env:"BASE_DIR"`
	FileName  string   `yaml:"file_name" env:"FILE_NAME"`
	KeyPrefix string   `yaml:"key_prefix" env:"KEY_PREFIX"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	PoolSize int           `yaml:"pool_size" env:"POOL_SIZE"`
	TLS      bool          `yaml:"tls" env:"TLS"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// DatabaseConfig 是 sql 摘要后端的连接参数
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"DRIVER"` // postgres, mysql, sqlite
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Name            string        `yaml:"name" env:"NAME"` // sqlite 为文件路径
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Chart     bool   `yaml:"chart" env:"CHART"`       // 政治倾向曲线 PNG
	Terminal  bool   `yaml:"terminal" env:"TERMINAL"` // 运行结束后打印汇总表
}

// ServerConfig 是运行期间的监控 HTTP 服务
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED"`
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format           string   `yaml:"format" env:"FORMAT"` // json, console
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}
