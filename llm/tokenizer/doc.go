// Package tokenizer 提供统一的 Token 计数接口，
// 支持 tiktoken 精确计数与估算器降级，用于活动窗口的 Token 预算裁剪。
package tokenizer
