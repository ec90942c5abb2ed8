// Package tlsutil 提供出站连接的 TLS 设置：补全服务的 HTTP 客户端
// 与 Redis 摘要日志共用同一套配置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
