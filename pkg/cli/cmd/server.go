package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/cli/output"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

var (
	serverPort int
	configPath string
	serverHost string
)

// serverCmd server子命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "服务管理命令",
	Long:  `管理Plan Engine HTTP API服务。`,
}

// serverStartCmd 启动服务
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动HTTP API服务",
	Long: `启动Plan Engine HTTP API服务。

示例：
  # 使用默认配置启动（未找到配置文件时使用内置默认值和本地SQLite）
  plan-engine server start

  # 指定端口启动
  plan-engine server start --port 8080

  # 指定配置文件启动
  plan-engine server start --config ./configs/plan-engine.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = config.FindConfigFile()
		}
		if configPath != "" {
			output.Info("使用配置文件: %s", configPath)
		} else {
			output.Warning("未找到配置文件，使用默认配置")
		}

		cfg, err := config.LoadFrameworkConfig(configPath)
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		// 命令行参数优先于配置文件
		if cmd.Flags().Changed("host") {
			cfg.PlanEngine.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.PlanEngine.Server.Port = serverPort
		}

		return runServer(cfg)
	},
}

// runServer 启动引擎和API服务器，阻塞直到收到中断信号
func runServer(cfg *config.EngineConfig) error {
	// 创建Engine
	eng, err := engine.NewEngineBuilder("").WithConfig(cfg).Build()
	if err != nil {
		output.Error("创建Engine失败: %v", err)
		return err
	}

	// 启动Engine
	if err := eng.Start(context.Background()); err != nil {
		eng.Stop()
		output.Error("启动Engine失败: %v", err)
		return err
	}

	// 创建并启动API服务器
	serverConfig := api.ServerConfigFrom(cfg)
	apiServer := api.NewAPIServer(eng, serverConfig, Version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	output.Success("Plan Engine Server started on %s:%d", serverConfig.Host, serverConfig.Port)

	// 等待中断信号或服务器异常退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		if serveErr != nil {
			output.Error("API服务器错误: %v", serveErr)
		}
	}

	output.Info("正在关闭服务...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.WriteTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		output.Error("关闭API服务器失败: %v", err)
	}

	eng.Stop()
	output.Success("服务已停止")
	return serveErr
}

func init() {
	serverStartCmd.Flags().IntVarP(&serverPort, "port", "p", config.DefaultPort, "监听端口")
	serverStartCmd.Flags().StringVarP(&serverHost, "host", "H", config.DefaultHost, "监听地址")
	serverStartCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	serverCmd.AddCommand(serverStartCmd)
}
