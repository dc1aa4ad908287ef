package config

import (
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string        `yaml:"type"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// CacheConfig 生成结果缓存配置
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	CleanInterval time.Duration `yaml:"clean_interval"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// PlanningConfig 计划生成配置
type PlanningConfig struct {
	SprintSize int `yaml:"sprint_size"`
	Velocity   int `yaml:"velocity"`
	// RescheduleCron 定时重排所有项目的cron表达式（6段，含秒），为空时不启用
	RescheduleCron     string  `yaml:"reschedule_cron"`
	GenerateRatePerSec float64 `yaml:"generate_rate_per_sec"`
	GenerateBurst      int     `yaml:"generate_burst"`
}

// EngineConfig 服务框架配置（对外导出）
type EngineConfig struct {
	PlanEngine struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			LogFormat    string `yaml:"log_format"`
			Env          string `yaml:"env"`
		} `yaml:"general"`
		Server  ServerConfig `yaml:"server"`
		Storage struct {
			Database DatabaseConfig `yaml:"database"`
			Cache    CacheConfig    `yaml:"cache"`
		} `yaml:"storage"`
		Planning PlanningConfig `yaml:"planning"`
	} `yaml:"plan-engine"`
}

// 默认值
const (
	DefaultInstanceName = "plan-engine"
	DefaultDatabaseType = "sqlite"
	DefaultDatabaseDSN  = "./plan-engine.db"
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8080
	DefaultSprintSize   = 5
	DefaultVelocity     = 20
)

// Default 返回填充了默认值的配置
func Default() *EngineConfig {
	cfg := &EngineConfig{}
	cfg.PlanEngine.Storage.Cache.Enabled = true
	cfg.ApplyDefaults()
	return cfg
}

// GetDatabaseType 获取数据库类型
func (c *EngineConfig) GetDatabaseType() string {
	return c.PlanEngine.Storage.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *EngineConfig) GetDatabaseDSN() string {
	return c.PlanEngine.Storage.Database.DSN
}

// ApplyDefaults 应用默认值
func (c *EngineConfig) ApplyDefaults() {
	// General默认值
	if c.PlanEngine.General.InstanceName == "" {
		c.PlanEngine.General.InstanceName = DefaultInstanceName
	}
	if c.PlanEngine.General.LogLevel == "" {
		c.PlanEngine.General.LogLevel = "info"
	}
	if c.PlanEngine.General.LogFormat == "" {
		c.PlanEngine.General.LogFormat = "console"
	}
	if c.PlanEngine.General.Env == "" {
		c.PlanEngine.General.Env = "dev"
	}

	// Server默认值
	if c.PlanEngine.Server.Host == "" {
		c.PlanEngine.Server.Host = DefaultHost
	}
	if c.PlanEngine.Server.Port <= 0 {
		c.PlanEngine.Server.Port = DefaultPort
	}
	if c.PlanEngine.Server.ReadTimeout <= 0 {
		c.PlanEngine.Server.ReadTimeout = 30 * time.Second
	}
	if c.PlanEngine.Server.WriteTimeout <= 0 {
		c.PlanEngine.Server.WriteTimeout = 30 * time.Second
	}
	if len(c.PlanEngine.Server.CORSOrigins) == 0 {
		c.PlanEngine.Server.CORSOrigins = []string{"*"}
	}

	// Database默认值
	if c.PlanEngine.Storage.Database.Type == "" {
		c.PlanEngine.Storage.Database.Type = DefaultDatabaseType
	}
	if c.PlanEngine.Storage.Database.DSN == "" && c.PlanEngine.Storage.Database.Type == DefaultDatabaseType {
		c.PlanEngine.Storage.Database.DSN = DefaultDatabaseDSN
	}
	if c.PlanEngine.Storage.Database.MaxOpenConns <= 0 {
		c.PlanEngine.Storage.Database.MaxOpenConns = 10
	}
	if c.PlanEngine.Storage.Database.MaxIdleConns <= 0 {
		c.PlanEngine.Storage.Database.MaxIdleConns = 5
	}
	if c.PlanEngine.Storage.Database.ConnMaxLifetime <= 0 {
		c.PlanEngine.Storage.Database.ConnMaxLifetime = 2 * time.Hour
	}
	if c.PlanEngine.Storage.Database.ConnMaxIdleTime <= 0 {
		c.PlanEngine.Storage.Database.ConnMaxIdleTime = 1 * time.Hour
	}

	// Cache默认值
	if c.PlanEngine.Storage.Cache.DefaultTTL <= 0 {
		c.PlanEngine.Storage.Cache.DefaultTTL = 1 * time.Hour
	}
	if c.PlanEngine.Storage.Cache.CleanInterval <= 0 {
		c.PlanEngine.Storage.Cache.CleanInterval = 10 * time.Minute
	}

	// Planning默认值
	if c.PlanEngine.Planning.SprintSize <= 0 {
		c.PlanEngine.Planning.SprintSize = DefaultSprintSize
	}
	if c.PlanEngine.Planning.Velocity <= 0 {
		c.PlanEngine.Planning.Velocity = DefaultVelocity
	}
	if c.PlanEngine.Planning.GenerateRatePerSec <= 0 {
		c.PlanEngine.Planning.GenerateRatePerSec = 2
	}
	if c.PlanEngine.Planning.GenerateBurst <= 0 {
		c.PlanEngine.Planning.GenerateBurst = 5
	}
}
