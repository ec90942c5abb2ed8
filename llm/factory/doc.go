// Package factory 根据配置组装补全 Provider（OpenAI 兼容端点 + 重试 + 限流）。
package factory
