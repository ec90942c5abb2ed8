// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供测试共享的辅助函数。

# 核心能力

  - CancelledContext：已取消的上下文
  - WriteFile：在临时目录中写入配置与角色文件

# 子包

  - testutil/mocks: MockProvider（按规则脚本化的补全 Provider），
    支持 Builder 模式与错误注入，以及常用响应构造函数
*/
package testutil
