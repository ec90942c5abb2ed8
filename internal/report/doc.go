// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 report 在运行结束后写出结果。

Reporter.Write 并发写出两个文件：

  - results_<turns>_<temperature>.txt：最终提案、决定、指标、倾向、
    倾向历史的均值与标准差以及最终摘要
  - political_leaning_over_time_<turns>_<temperature>.png：倾向随回合变化的折线图

倾向历史为空时均值与标准差都记为 0，且不画图。
开启 Terminal 时还会用 lipgloss 在终端打印汇总。
*/
package report
