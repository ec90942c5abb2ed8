// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供运行期间的可选监控服务。

# 核心类型

  - Monitor：按 config.ServerConfig 监听端口，后台提供路由，
    关闭幂等，并返回后台服务期间的错误。
  - Hub：回合事件广播器，实现 conversation.Observer。
    每个订阅者有固定缓冲，满了丢弃新事件，引擎永不被阻塞。
  - NewRouter：基于 chi 的路由。

# 路由

  - GET /health：存活检查与当前引擎状态
  - GET /state：引擎状态、共享框架快照与倾向历史
  - GET /metrics：Prometheus 指标（由 internal/metrics 提供）
  - GET /ws：WebSocket 回合事件流，连接时补发最近一次事件
*/
package server
