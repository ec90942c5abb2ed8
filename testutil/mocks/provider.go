// MockProvider 的 LLM 提供商测试模拟实现。
//
// 支持固定响应、按规则脚本化响应与错误注入场景。
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/BaSui01/policyswarm/llm"
)

// Matcher 判断请求是否命中某条规则
type Matcher func(req *llm.ChatRequest) bool

// Responder 为命中的请求生成响应
type Responder func(req *llm.ChatRequest) (*llm.ChatResponse, error)

type rule struct {
	name    string
	match   Matcher
	respond Responder
}

// MockProvider 是 LLM Provider 的模拟实现。
// 规则按注册顺序匹配，均未命中时返回默认文本响应。
type MockProvider struct {
	mu sync.Mutex

	name     string
	response string
	err      error
	rules    []rule

	calls     []MockProviderCall
	ruleHits  map[string]int
	failAfter int // 第 N 次调用之后全部失败（0 表示不启用）
	failErr   error
}

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Rule     string
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// --- 构造函数和 Builder 方法 ---

// NewMockProvider 创建新的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:     "mock",
		response: "Mock response",
		ruleHits: make(map[string]int),
	}
}

// WithName 设置 Provider 名称
func (m *MockProvider) WithName(name string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithResponse 设置默认响应内容
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError 设置默认返回错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *MockProvider) WithFailAfter(n int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.failErr = err
	return m
}

// On 注册命名规则
func (m *MockProvider) On(name string, match Matcher, respond Responder) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule{name: name, match: match, respond: respond})
	return m
}

// OnText 注册返回固定文本的规则
func (m *MockProvider) OnText(name string, match Matcher, text string) *MockProvider {
	return m.On(name, match, func(*llm.ChatRequest) (*llm.ChatResponse, error) {
		return TextResponse(text), nil
	})
}

// --- Provider 实现 ---

// Completion 实现 llm.Provider
func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	n := len(m.calls) + 1
	failing := m.failAfter > 0 && n > m.failAfter
	var matched *rule
	if !failing {
		for i := range m.rules {
			if m.rules[i].match(req) {
				matched = &m.rules[i]
				break
			}
		}
	}
	defaultText, defaultErr, failErr := m.response, m.err, m.failErr
	m.mu.Unlock()

	var (
		resp     *llm.ChatResponse
		err      error
		ruleName string
	)
	switch {
	case failing:
		ruleName, err = "fail_after", failErr
	case matched != nil:
		ruleName = matched.name
		resp, err = matched.respond(req)
	case defaultErr != nil:
		ruleName, err = "default", defaultErr
	default:
		ruleName, resp = "default", TextResponse(defaultText)
	}

	m.mu.Lock()
	m.calls = append(m.calls, MockProviderCall{Rule: ruleName, Request: req, Response: resp, Error: err})
	m.ruleHits[ruleName]++
	m.mu.Unlock()
	return resp, err
}

// Name 实现 llm.Provider
func (m *MockProvider) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// --- 调用记录 ---

// Calls 返回调用记录副本
func (m *MockProvider) Calls() []MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockProviderCall(nil), m.calls...)
}

// CallCount 返回总调用次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Hits 返回命中指定规则的次数
func (m *MockProvider) Hits(rule string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ruleHits[rule]
}

// Reset 清空调用记录
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.ruleHits = make(map[string]int)
}

// --- 匹配器 ---

// SystemContains 匹配首条 system 消息包含 substr 的请求
func SystemContains(substr string) Matcher {
	return func(req *llm.ChatRequest) bool {
		for _, msg := range req.Messages {
			if msg.Role == llm.RoleSystem {
				return strings.Contains(msg.Content, substr)
			}
		}
		return false
	}
}

// UserContains 匹配任一 user 消息包含 substr 的请求
func UserContains(substr string) Matcher {
	return func(req *llm.ChatRequest) bool {
		for _, msg := range req.Messages {
			if msg.Role == llm.RoleUser && strings.Contains(msg.Content, substr) {
				return true
			}
		}
		return false
	}
}

// HasTool 匹配携带指定工具的请求
func HasTool(name string) Matcher {
	return func(req *llm.ChatRequest) bool {
		for _, t := range req.Tools {
			if t.Name == name {
				return true
			}
		}
		return false
	}
}

// Any 匹配所有请求
func Any() Matcher {
	return func(*llm.ChatRequest) bool { return true }
}
