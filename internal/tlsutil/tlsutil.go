package tlsutil

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Config 返回出站连接的 TLS 配置：最低 TLS 1.2，TLS 1.2 下只协商 AEAD 套件
func Config(serverName string) *tls.Config {
	return &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
	}
}

// RedisConfig 返回 Redis 摘要日志的 TLS 配置，未启用时为 nil。
// addr 的 host 部分作为 ServerName。
func RedisConfig(enabled bool, addr string) *tls.Config {
	if !enabled {
		return nil
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return Config(host)
}

// CompletionClient 返回调用补全接口的 HTTP 客户端。
// 运行期间同一时刻只有一个补全请求，空闲连接保留一条即可。
func CompletionClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = Config("")
	transport.MaxIdleConnsPerHost = 1
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Timeout: timeout, Transport: transport}
}
