package engine

import (
	"errors"
	"fmt"

	istorage "github.com/LENAX/plan-engine/internal/storage"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/cache"
	"github.com/LENAX/plan-engine/pkg/core/events"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/logx"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// EngineBuilder 引擎构建器（链式）
type EngineBuilder struct {
	engineConfigPath string
	cfg              *config.EngineConfig
	log              *logx.Logger
	repo             storage.ProjectRepository
	taskGenerator    planner.TaskGenerator
	storyGenerator   planner.StoryGenerator
	err              error
}

// NewEngineBuilder 创建构建器，engineConfigPath为空时使用默认配置
func NewEngineBuilder(engineConfigPath string) *EngineBuilder {
	return &EngineBuilder{engineConfigPath: engineConfigPath}
}

// WithConfig 直接使用给定配置，忽略配置文件路径（链式）
func (b *EngineBuilder) WithConfig(cfg *config.EngineConfig) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if cfg == nil {
		b.err = errors.New("config cannot be nil")
		return b
	}
	b.cfg = cfg
	return b
}

// WithLogger 使用给定的日志（链式）
func (b *EngineBuilder) WithLogger(log logx.Logger) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.log = &log
	return b
}

// WithRepository 使用给定的存储，不再根据配置创建；引擎停止时会关闭它（链式）
func (b *EngineBuilder) WithRepository(repo storage.ProjectRepository) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if repo == nil {
		b.err = errors.New("repository cannot be nil")
		return b
	}
	b.repo = repo
	return b
}

// WithTaskGenerator 替换默认的关键字任务生成器（链式）
func (b *EngineBuilder) WithTaskGenerator(g planner.TaskGenerator) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if g == nil {
		b.err = errors.New("task generator cannot be nil")
		return b
	}
	b.taskGenerator = g
	return b
}

// WithStoryGenerator 替换默认的关键字用户故事生成器（链式）
func (b *EngineBuilder) WithStoryGenerator(g planner.StoryGenerator) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if g == nil {
		b.err = errors.New("story generator cannot be nil")
		return b
	}
	b.storyGenerator = g
	return b
}

// Build 构建引擎实例（最终步骤）
func (b *EngineBuilder) Build() (*Engine, error) {
	// 检查构建过程是否有错误
	if b.err != nil {
		return nil, b.err
	}

	// 1. 加载引擎配置
	cfg := b.cfg
	if cfg == nil {
		loaded, err := config.LoadFrameworkConfig(b.engineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config failed: %w", err)
		}
		cfg = loaded
	}

	// 2. 校验配置
	if err := config.ValidateFrameworkConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate engine config failed: %w", err)
	}
	pe := cfg.PlanEngine

	// 3. 日志
	var log logx.Logger
	if b.log != nil {
		log = *b.log
	} else {
		log = logx.New(logx.Config{
			Level:  pe.General.LogLevel,
			Format: logx.ParseFormat(pe.General.LogFormat),
			Fields: map[string]string{"instance": pe.General.InstanceName},
		})
	}

	// 4. 初始化存储层（根据配置创建Repository）
	repo := b.repo
	if repo == nil {
		factory, err := istorage.NewDatabaseFactory(istorage.Options{
			Type: cfg.GetDatabaseType(),
			DSN:  cfg.GetDatabaseDSN(),
			Pool: sqlstore.PoolOptions{
				MaxOpenConns:    pe.Storage.Database.MaxOpenConns,
				MaxIdleConns:    pe.Storage.Database.MaxIdleConns,
				ConnMaxLifetime: pe.Storage.Database.ConnMaxLifetime,
				ConnMaxIdleTime: pe.Storage.Database.ConnMaxIdleTime,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("init storage failed: %w", err)
		}
		repo = factory.CreateProjectRepo()
	}

	// 5. 生成结果缓存
	var resultCache cache.ResultCache = cache.NopCache{}
	if pe.Storage.Cache.Enabled {
		resultCache = cache.NewMemoryResultCache(pe.Storage.Cache.DefaultTTL, pe.Storage.Cache.CleanInterval)
	}

	// 6. 生成器（启用缓存时包装一层）
	tasks := b.taskGenerator
	if tasks == nil {
		tasks = planner.NewKeywordTaskGenerator()
	}
	stories := b.storyGenerator
	if stories == nil {
		stories = planner.NewKeywordStoryGenerator()
	}
	if pe.Storage.Cache.Enabled {
		tasks = planner.NewCachedTaskGenerator(tasks, resultCache, pe.Storage.Cache.DefaultTTL)
		stories = planner.NewCachedStoryGenerator(stories, resultCache, pe.Storage.Cache.DefaultTTL)
	}

	coordinator := planner.NewCoordinator(tasks, stories, planner.Options{
		SprintSize: pe.Planning.SprintSize,
		Velocity:   pe.Planning.Velocity,
	}, log)

	// 7. 创建Engine实例
	bus := events.NewGoChannelBus(log)
	eng, err := NewEngine(cfg, repo, bus, coordinator, resultCache, log)
	if err != nil {
		// 释放已创建的资源
		bus.Close()
		repo.Close()
		resultCache.Close()
		return nil, fmt.Errorf("create engine failed: %w", err)
	}
	return eng, nil
}
