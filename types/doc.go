// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 policyswarm 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 agent、llm、config 等上层
模块提供统一的类型契约。

# 核心类型

  - Message          ：对话消息（Role、Content、Author、Turn）
  - Error / ErrorCode：结构化错误体系：CONFIGURATION_ERROR（启动期致命）、
    COMPLETION_FAILURE（补全调用失败）、PARSE_FAILURE（响应格式错误，永不致命）
*/
package types
