// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 conversation 实现回合制的多角色对话引擎。

# 回合

每个外部回合从根角色（Director）开始：

 1. 调用当前角色，携带活动窗口与共享上下文快照
 2. 回复可以是纯文本、框架编辑、转交（同一回合内由目标角色继续回答）
    或评估请求；转交深度受 MaxHandoffDepth 限制
 3. 本回合产生的消息进入活动窗口并裁剪，最终消息进入最近 10 回合缓冲区
 4. 执行一次显式评估并把（可能未变的）倾向追加到 LeaningHistory
 5. 检查 10/100/1000 回合摘要

# 终止

  - budgetExhausted：完成 TotalTurns 个回合
  - fatalError：角色调用失败或回复违反工具协议
  - cancelled：上下文被取消

无论如何终止，Run 都返回可用于报告的 RunResult。
评估与摘要的失败只记录日志，不会终止循环。

# 观察者

Observer 在每个回合结束后收到 TurnEvent，监控服务与指标收集器通过它获取进度。
*/
package conversation
