// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 policyswarm 命令行入口。

# 子命令

  - run：加载配置，运行对话，写出结果文件、倾向曲线与终端汇总
  - personas：列出并校验角色目录（内置或 YAML 文件）
  - version：打印构建信息

# 组装顺序

配置（YAML + 环境变量 + .env）→ 日志 → 遥测 → 角色注册表 →
补全客户端（带 Prometheus 观察者）→ 摘要日志后端（memory/file/redis/sql，
多个时用 Tee 合并）→ 对话引擎与观察者 → 可选监控服务 → 报告。

收到 SIGINT/SIGTERM 时引擎在回合边界停止，已有结果照常写出。
Version、BuildTime、GitCommit 通过 ldflags 注入。
*/
package main
