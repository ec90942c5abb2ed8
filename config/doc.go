// Package config 提供 policyswarm 的配置管理功能。
//
// 按 默认值 → YAML 文件 → 旧版环境变量（OPENAI_API_KEY、OPENAI_MODEL、
// OPENAI_TEMPERATURE、OPENAI_MAX_TOKENS、MAX_TURNS）→ POLICYSWARM_ 前缀环境变量
// 的顺序合并配置，.env 文件通过 godotenv 预先加载。
package config
