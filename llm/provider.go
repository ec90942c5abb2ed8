package llm

import "context"

// Provider 是补全客户端：无状态的同步请求/响应。
// 引擎同一时刻只有一个调用在途。
type Provider interface {
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Name() string
}
