// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 context 维护对话的活动窗口，即每次调用角色时携带的历史消息。

# 概述

窗口按两道上限裁剪，最旧的消息先被移除：

  - MaxMessages：消息条数上限（默认 100）
  - MaxTokens：可选的 token 预算，按分词器计数，从新到旧保留

KeepLastN 条最新消息不受 token 预算影响，保证角色始终能看到上一条回复。
分词器出错时按 len/4 估算。

窗口只由引擎写入，但读取加锁，监控端点可以在循环运行时读取。
*/
package context
