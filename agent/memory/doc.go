// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 memory 实现对话的分层摘要：把无限增长的对话压缩进固定大小的内存。

# 记忆层次

三个容量为 10 的 FIFO 缓冲区逐级供给：

  - 最近 10 回合的原始消息：每 10 回合生成一条 10-turn 摘要
  - 最近 10 条 10-turn 摘要：每 100 回合生成一条 100-turn 摘要
  - 最近 10 条 100-turn 摘要：每 1000 回合生成一条 1000-turn 摘要

第 1000 回合（及其倍数）生成 1000-turn 摘要后三个缓冲区全部清空，
之后的周期从空缓冲区重新开始。

# 最终摘要

FinalSummary 按粒度从粗到细取内容：最近 totalTurns/100 条 100-turn 摘要，
最近 (totalTurns%100)/10 条 10-turn 摘要，最近 totalTurns%10 条原始消息。
没有任何内容时直接返回 NothingToSummarize，不调用补全服务。

摘要失败不会中断对话：该级摘要记为空字符串，循环继续。
*/
package memory
