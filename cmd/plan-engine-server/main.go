package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/logx"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", config.FindConfigFile(), "引擎配置文件路径")
	host := flag.String("host", "", "监听地址（覆盖配置文件）")
	port := flag.Int("port", 0, "监听端口（覆盖配置文件）")
	flag.Parse()

	boot := logx.NewConsole("info")
	boot.Info("Plan Engine Server",
		logx.String("version", Version),
		logx.String("commit", GitCommit),
		logx.String("built", BuildTime),
		logx.String("config", *configPath))

	// 1. 加载配置
	cfg, err := config.LoadFrameworkConfig(*configPath)
	if err != nil {
		boot.Error("❌ 加载配置失败", logx.Err(err))
		os.Exit(1)
	}
	if *host != "" {
		cfg.PlanEngine.Server.Host = *host
	}
	if *port > 0 {
		cfg.PlanEngine.Server.Port = *port
	}

	// 2. 构建Engine
	eng, err := engine.NewEngineBuilder(*configPath).WithConfig(cfg).Build()
	if err != nil {
		boot.Error("❌ 创建Engine失败", logx.Err(err))
		os.Exit(1)
	}
	log := eng.Logger()

	// 3. 启动Engine
	if err := eng.Start(context.Background()); err != nil {
		log.Error("❌ 启动Engine失败", logx.Err(err))
		eng.Stop()
		os.Exit(1)
	}

	// 4. 创建API服务器
	serverConfig := api.ServerConfigFrom(cfg)
	apiServer := api.NewAPIServer(eng, serverConfig, Version)

	// 5. 在goroutine中启动API服务器
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("❌ API服务器错误", logx.Err(err))
		}
	}()

	// 6. 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 7. 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.WriteTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("关闭API服务器失败", logx.Err(err))
	}

	eng.Stop()
	log.Info("✅ 服务已停止")
}
