package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/plan-engine/pkg/logx"
)

// CronScheduler 定时调度器（对外导出）
// 按cron表达式周期性地对所有已存储项目重新排期。
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	log     logx.Logger
	entryID cron.EntryID
	expr    string
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine, log logx.Logger) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:   cron.New(cron.WithSeconds()), // 支持秒级精度
		engine: eng,
		log:    log.With(logx.String("component", "cron")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register 注册重排任务，重复注册会替换之前的表达式
func (cs *CronScheduler) Register(expr string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	// 验证Cron表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("Cron表达式无效: %s, %w", expr, err)
	}

	if cs.entryID != 0 {
		cs.cron.Remove(cs.entryID)
	}

	entryID, err := cs.cron.AddFunc(expr, cs.trigger)
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}
	cs.entryID = entryID
	cs.expr = expr

	cs.log.Info("✅ reschedule job registered", logx.String("cron", expr))
	return nil
}

// Expr 当前cron表达式
func (cs *CronScheduler) Expr() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.expr
}

// trigger 重排所有项目（内部方法）
func (cs *CronScheduler) trigger() {
	cs.log.Debug("🕐 reschedule triggered")
	count, err := cs.engine.RescheduleAll(cs.ctx)
	if err != nil {
		cs.log.Error("❌ reschedule failed", logx.Int("rescheduled", count), logx.Err(err))
		return
	}
	cs.log.Info("✅ projects rescheduled", logx.Int("rescheduled", count))
}

// Start 启动定时调度器（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	cs.log.Info("✅ cron scheduler started")
}

// Stop 停止定时调度器并等待正在执行的任务结束（对外导出）
func (cs *CronScheduler) Stop() {
	cs.cancel()
	<-cs.cron.Stop().Done()
	cs.log.Info("✅ cron scheduler stopped")
}
