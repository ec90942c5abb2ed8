package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix 是带前缀环境变量的默认前缀
const DefaultEnvPrefix = "POLICYSWARM"

// Loader 按 默认值 → YAML → 旧版变量 → 前缀变量 的顺序合并配置。
//
//	cfg, err := config.NewLoader().
//	    WithDotEnv(".env").
//	    WithConfigPath("config.yaml").
//	    Load()
type Loader struct {
	path      string
	prefix    string
	dotEnv    []string
	legacyEnv bool
}

func NewLoader() *Loader {
	return &Loader{prefix: DefaultEnvPrefix, legacyEnv: true}
}

// WithConfigPath 设置 YAML 文件；文件不存在时沿用默认值
func (l *Loader) WithConfigPath(path string) *Loader {
	l.path = path
	return l
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.prefix = prefix
	return l
}

// WithDotEnv 在读取环境变量前加载 .env 文件。
// 不存在的文件被跳过，已设置的变量不会被覆盖。
func (l *Loader) WithDotEnv(paths ...string) *Loader {
	l.dotEnv = append(l.dotEnv, paths...)
	return l
}

// WithLegacyEnv 控制是否读取 OPENAI_API_KEY 等不带前缀的变量
func (l *Loader) WithLegacyEnv(enabled bool) *Loader {
	l.legacyEnv = enabled
	return l
}

// Load 不做校验，调用方在应用命令行覆盖后调用 Validate
func (l *Loader) Load() (*Config, error) {
	if err := loadDotEnv(l.dotEnv); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := DefaultConfig()
	if err := mergeYAML(cfg, l.path); err != nil {
		return nil, err
	}
	if l.legacyEnv {
		if err := applyLegacyEnv(cfg); err != nil {
			return nil, err
		}
	}
	if err := overlayEnv(reflect.ValueOf(cfg).Elem(), l.prefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(paths []string) error {
	var present []string
	for _, p := range paths {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			present = append(present, p)
		case !errors.Is(err, os.ErrNotExist):
			return err
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

func mergeYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// legacyVars 是早期版本使用的不带前缀的变量
var legacyVars = []struct {
	key    string
	target func(*Config) any
}{
	{"OPENAI_API_KEY", func(c *Config) any { return &c.LLM.APIKey }},
	{"OPENAI_MODEL", func(c *Config) any { return &c.LLM.Model }},
	{"OPENAI_TEMPERATURE", func(c *Config) any { return &c.LLM.Temperature }},
	{"OPENAI_MAX_TOKENS", func(c *Config) any { return &c.LLM.MaxTokens }},
	{"MAX_TURNS", func(c *Config) any { return &c.Run.TotalTurns }},
}

func applyLegacyEnv(cfg *Config) error {
	for _, lv := range legacyVars {
		raw := strings.TrimSpace(os.Getenv(lv.key))
		if raw == "" {
			continue
		}
		if err := decodeInto(reflect.ValueOf(lv.target(cfg)).Elem(), raw); err != nil {
			return fmt.Errorf("%s: %w", lv.key, err)
		}
	}
	return nil
}

// overlayEnv 按 env tag 递归覆盖字段，变量名为 PREFIX_SECTION_FIELD
func overlayEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		field := v.Field(i)

		if field.Kind() == reflect.Struct {
			if err := overlayEnv(field, key); err != nil {
				return err
			}
			continue
		}
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		if err := decodeInto(field, raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// decodeInto 解析字符串写入字段；字符串切片按逗号分隔
func decodeInto(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
