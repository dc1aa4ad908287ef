package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/plan-engine/pkg/logx"
)

// cronParser 与引擎定时器使用同一解析规则（含秒）
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateFrameworkConfig 校验框架配置合法性
func ValidateFrameworkConfig(cfg *EngineConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}
	pe := cfg.PlanEngine

	// 校验General
	if pe.General.InstanceName == "" {
		return fmt.Errorf("instance_name不能为空")
	}
	if pe.General.LogLevel != "" && !logx.ValidLevel(pe.General.LogLevel) {
		return fmt.Errorf("log_level必须是trace/debug/info/warn/error之一")
	}
	if pe.General.LogFormat != "" && pe.General.LogFormat != "console" && pe.General.LogFormat != "json" {
		return fmt.Errorf("log_format必须是console/json之一")
	}

	// 校验Server
	if pe.Server.Port <= 0 || pe.Server.Port > 65535 {
		return fmt.Errorf("server.port必须在1-65535之间")
	}

	// 校验Storage.Database
	if pe.Storage.Database.Type == "" {
		return fmt.Errorf("database.type不能为空")
	}
	validDBTypes := map[string]bool{
		"sqlite":     true,
		"postgres":   true,
		"postgresql": true,
		"mysql":      true,
	}
	if !validDBTypes[pe.Storage.Database.Type] {
		return fmt.Errorf("database.type必须是sqlite/postgres/mysql之一")
	}
	if pe.Storage.Database.DSN == "" {
		return fmt.Errorf("database.dsn不能为空")
	}
	if pe.Storage.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns必须大于0")
	}
	if pe.Storage.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns不能为负数")
	}

	// 校验Planning
	if pe.Planning.SprintSize <= 0 {
		return fmt.Errorf("planning.sprint_size必须大于0")
	}
	if pe.Planning.Velocity <= 0 {
		return fmt.Errorf("planning.velocity必须大于0")
	}
	if pe.Planning.RescheduleCron != "" {
		if _, err := cronParser.Parse(pe.Planning.RescheduleCron); err != nil {
			return fmt.Errorf("planning.reschedule_cron无效: %w", err)
		}
	}
	if pe.Planning.GenerateRatePerSec < 0 {
		return fmt.Errorf("planning.generate_rate_per_sec不能为负数")
	}

	return nil
}
