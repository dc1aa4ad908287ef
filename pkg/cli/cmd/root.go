// Package cmd plan-engine命令行的cobra命令。
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "plan-engine",
	Short: "Plan Engine CLI - 项目计划引擎命令行工具",
	Long: `Plan Engine CLI 是一个用于生成和排期项目计划的命令行工具。

支持的功能：
  - 管理项目（列出、查看、生成、删除）
  - 离线排期预览和依赖检查（YAML/JSON任务文件）
  - 技术栈推荐
  - 启动HTTP API服务

使用示例：
  # 列出所有项目
  plan-engine project list

  # 生成项目计划
  plan-engine project generate --name Shop --description "e-commerce website"

  # 离线排期预览
  plan-engine schedule preview -f tasks.yaml --start 2024-01-01

  # 启动HTTP服务
  plan-engine server start --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Plan Engine服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(techCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
