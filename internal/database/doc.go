// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 负责打开 SQL 摘要日志所用的数据库，并管理其连接池。

# 核心类型

  - Open / Dialector：按驱动名（postgres、mysql、sqlite）构造 GORM 连接。
  - Pool：持有 GORM DB 与底层 sql.DB，提供 Ping、Stats、Report、Close。
  - PoolConfig：最大打开/空闲连接数、连接生命周期与巡检间隔。
  - StatsRecorder：连接数上报接口，由 internal/metrics.Collector 实现。

后台巡检按间隔探活并上报连接数，Close 会等待其退出。
*/
package database
