// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 handoff 把智能体返回的工具调用解析为控制指令，并记录单个回合内的交接链。

# 概述

一个回合从根角色开始。角色的回复可以携带若干工具调用：

  - update_framework：覆盖提案或决议文本
  - transfer_to_<角色>：把本回合剩余部分交给另一个角色
  - evaluate_framework / evaluate_metrics：请求立即评估

Resolve 按调用顺序收集所有文本编辑，并以第一个控制类调用
（交接或评估）决定本回合的走向，其余控制调用被忽略。
调用未授权的工具或转交给不允许的目标会返回 ProtocolViolation。

# 交接链

Chain 记录一个回合内发生的全部交接并限制深度。深度达到上限后，
新的交接请求被标记为 rejected，回合以当前角色的回复结束。
*/
package handoff
