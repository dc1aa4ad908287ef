// Package engine 把配置、存储、事件总线和计划生成组装成一个可启停的服务核心。
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/cache"
	"github.com/LENAX/plan-engine/pkg/core/events"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/logx"
	"github.com/LENAX/plan-engine/pkg/storage"
)

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoTasks 项目没有可排期的任务
	ErrNoTasks = errors.New("project has no tasks to schedule")
	// ErrInvalidStatus 任务状态不合法
	ErrInvalidStatus = errors.New("invalid task status")
)

// Engine 计划引擎核心结构体（对外导出）
type Engine struct {
	cfg           *config.EngineConfig
	baseLog       logx.Logger
	log           logx.Logger
	repo          storage.ProjectRepository
	cache         cache.ResultCache
	bus           events.Bus
	coordinator   *planner.Coordinator
	cronScheduler *CronScheduler
	closers       []func() error // Stop时按逆序执行

	running bool
	mu      sync.Mutex
}

// NewEngine 创建Engine实例（对外导出的工厂方法）
// cfg为nil时使用默认配置；resultCache为nil时不缓存。
func NewEngine(
	cfg *config.EngineConfig,
	repo storage.ProjectRepository,
	bus events.Bus,
	coordinator *planner.Coordinator,
	resultCache cache.ResultCache,
	log logx.Logger,
) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository不能为空")
	}
	if bus == nil {
		return nil, fmt.Errorf("事件总线不能为空")
	}
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator不能为空")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if resultCache == nil {
		resultCache = cache.NopCache{}
	}

	e := &Engine{
		cfg:         cfg,
		baseLog:     log,
		log:         log.With(logx.String("component", "engine")),
		repo:        repo,
		cache:       resultCache,
		bus:         bus,
		coordinator: coordinator,
	}
	e.closers = append(e.closers, repo.Close, bus.Close, resultCache.Close)

	if expr := cfg.PlanEngine.Planning.RescheduleCron; expr != "" {
		e.cronScheduler = NewCronScheduler(e, log)
		if err := e.cronScheduler.Register(expr); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Start 启动引擎（目前只启动定时重排）
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}

	if err := e.repo.Ping(ctx); err != nil {
		return fmt.Errorf("存储不可用: %w", err)
	}

	if e.cronScheduler != nil {
		e.cronScheduler.Start()
	}

	e.running = true
	e.log.Info("✅ plan engine started",
		logx.String("instance", e.cfg.PlanEngine.General.InstanceName),
		logx.String("database", e.cfg.GetDatabaseType()))
	return nil
}

// Stop 停止引擎并释放资源，可重复调用
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cronScheduler != nil {
		e.cronScheduler.Stop()
	}

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn("⚠️ release resource failed", logx.Err(err))
		}
	}
	e.closers = nil

	if e.running {
		e.running = false
		e.log.Info("✅ plan engine stopped")
	}
}

// IsRunning 引擎是否已启动
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Config 引擎配置
func (e *Engine) Config() *config.EngineConfig {
	return e.cfg
}

// Logger 引擎根日志，各组件在其上附加自己的component字段
func (e *Engine) Logger() logx.Logger {
	return e.baseLog
}

// Repository 项目存储
func (e *Engine) Repository() storage.ProjectRepository {
	return e.repo
}

// Bus 事件总线
func (e *Engine) Bus() events.Bus {
	return e.bus
}

// Coordinator 计划生成协调器
func (e *Engine) Coordinator() *planner.Coordinator {
	return e.coordinator
}

// CronScheduler 定时重排调度器，未配置时为nil
func (e *Engine) CronScheduler() *CronScheduler {
	return e.cronScheduler
}

// Ready 检查存储是否可用
func (e *Engine) Ready(ctx context.Context) error {
	return e.repo.Ping(ctx)
}

func (e *Engine) publish(ctx context.Context, event *events.Event) {
	events.PublishQuietly(ctx, e.bus, e.log, event)
}
