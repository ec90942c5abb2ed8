// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的运行指标采集能力，覆盖
HTTP、补全调用、对话回合与数据库四个维度，指标名分别带
http_、llm_、run_、db_ 子系统前缀。

# 核心类型

  - Collector：指标收集器，持有独立的 prometheus.Registry，
    通过 promauto.With 注册指标，Handler 暴露 /metrics。

# 接入点

  - 作为 llm.CompletionObserver 挂在 ResilientProvider 上，
    按 provider/model/phase 记录请求数、耗时与 Token 用量。
  - 作为 conversation.Observer 注册到引擎，记录回合数、回合耗时、
    交接、评估结果、摘要生成以及当前倾向与四项框架指标。
  - internal/database 的连接池统计通过 RecordDBConnections 上报。
*/
package metrics
