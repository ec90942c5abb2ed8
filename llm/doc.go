// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供统一的补全接入层：Provider 抽象、请求与响应模型、
错误语义以及带熔断、重试与限流的弹性包装。

# 核心接口

  - [Provider]：补全提供者接口，提供 Completion / Name
  - [CompletionObserver]：补全调用观测接口，由 metrics 层实现

# 核心类型

  - [ChatRequest] / [ChatResponse]：统一的请求与响应模型
  - [ToolSchema] / [ToolCall]：原生工具调用，用于智能体之间的交接
  - [Error]：带错误码与可重试标记的传输层错误
  - [ResilientProvider]：熔断 + 重试 + 本地限流装饰器

# 子包

  - providers/openaicompat：OpenAI Chat Completions 兼容实现与状态码映射
  - retry：指数退避重试
  - circuitbreaker：连续失败熔断与半开恢复
  - tokenizer：tiktoken 计数与估算器降级
  - factory：根据配置组装 Provider
*/
package llm
