// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 persistence 提供摘要审计日志：每条摘要按级别与回合追加保存。

# 后端

  - memory：进程内列表，用于测试与不需要落盘的运行
  - file：追加写入人类可读的 summary.txt，同时写 summaries.jsonl 供查询
  - redis：JSON 数据键加按运行划分的列表
  - sql：gorm 模型 summary_records，支持 postgres / mysql / sqlite

所有后端只追加，不修改已有记录。Tee 把一条摘要同时写入多个后端，
任一后端失败会返回合并后的错误，但不会阻止其余后端写入。
*/
package persistence
