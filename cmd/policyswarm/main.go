// =============================================================================
// policyswarm 主入口
// =============================================================================
// 使用方法:
//
//	policyswarm run                          # 按默认配置运行
//	policyswarm run --config config.yaml     # 指定配置文件
//	policyswarm run --turns 25               # 覆盖回合数
//	policyswarm personas                     # 列出并校验角色
//	policyswarm version                      # 显示版本信息
// =============================================================================

package main

import "os"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
