package agent

import (
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/policyswarm/types"
	"gopkg.in/yaml.v3"
)

const (
	// RootName 是对话根角色，每个外部轮次都从它开始
	RootName = "Director"
	// EvaluatorName 是唯一暴露 evaluate_metrics 的评估角色
	EvaluatorName = "Metrics Evaluator"
)

// Definition 是一条角色配置记录
type Definition struct {
	Name         string `json:"name" yaml:"name"`
	Instructions string `json:"instructions" yaml:"instructions"`
}

// ModelConfig 是所有角色共享的模型参数，启动后不可变
type ModelConfig struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float32 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// DefaultModelConfig 返回默认模型参数
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

type personaFile struct {
	Personas []Definition `yaml:"personas"`
}

// LoadDefinitions 从 YAML 文件读取有序的角色列表
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewConfigurationError("read personas file %s: %v", path, err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions 解析 YAML 角色列表
func ParseDefinitions(data []byte) ([]Definition, error) {
	var pf personaFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, types.NewConfigurationError("parse personas: %v", err)
	}
	if len(pf.Personas) == 0 {
		return nil, types.NewConfigurationError("personas file defines no personas")
	}
	for i := range pf.Personas {
		pf.Personas[i].Name = strings.TrimSpace(pf.Personas[i].Name)
		pf.Personas[i].Instructions = strings.TrimSpace(pf.Personas[i].Instructions)
	}
	return pf.Personas, nil
}

// ToolSlug 把角色名转换为工具名可用的标识：小写字母、数字和下划线
func ToolSlug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// String 实现 fmt.Stringer
func (d Definition) String() string {
	return fmt.Sprintf("%s (%d chars)", d.Name, len(d.Instructions))
}
