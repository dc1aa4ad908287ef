package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/plan-engine/pkg/core/cache"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// cacheNamespace 缓存key的命名空间（uuid v5）
var cacheNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("plan-engine/planner"))

// cacheKey 同一规范化描述得到同一个key
func cacheKey(kind, description string) string {
	return kind + ":" + uuid.NewSHA1(cacheNamespace, []byte(NormalizeDescription(description))).String()
}

// CachedTaskGenerator 缓存任务生成结果的装饰器
type CachedTaskGenerator struct {
	inner TaskGenerator
	cache cache.ResultCache
	ttl   time.Duration
}

// NewCachedTaskGenerator 创建CachedTaskGenerator，ttl<=0时使用缓存默认有效期
func NewCachedTaskGenerator(inner TaskGenerator, c cache.ResultCache, ttl time.Duration) *CachedTaskGenerator {
	return &CachedTaskGenerator{inner: inner, cache: c, ttl: ttl}
}

// GenerateTasks 命中缓存时返回副本，避免调用方修改缓存内容
func (g *CachedTaskGenerator) GenerateTasks(ctx context.Context, description string) ([]GeneratedTask, error) {
	key := cacheKey("tasks", description)
	if v, ok := g.cache.Get(key); ok {
		if tasks, ok := v.([]GeneratedTask); ok {
			return copyTasks(tasks), nil
		}
	}

	tasks, err := g.inner.GenerateTasks(ctx, description)
	if err != nil {
		return nil, err
	}
	_ = g.cache.Set(key, copyTasks(tasks), g.ttl)
	return tasks, nil
}

func copyTasks(tasks []GeneratedTask) []GeneratedTask {
	out := make([]GeneratedTask, len(tasks))
	for i, t := range tasks {
		out[i] = t
		if t.Dependencies != nil {
			out[i].Dependencies = append(schedule.DependencyList(nil), t.Dependencies...)
		}
	}
	return out
}

// CachedStoryGenerator 缓存用户故事生成结果的装饰器
type CachedStoryGenerator struct {
	inner StoryGenerator
	cache cache.ResultCache
	ttl   time.Duration
}

// NewCachedStoryGenerator 创建CachedStoryGenerator
func NewCachedStoryGenerator(inner StoryGenerator, c cache.ResultCache, ttl time.Duration) *CachedStoryGenerator {
	return &CachedStoryGenerator{inner: inner, cache: c, ttl: ttl}
}

// GenerateStories 命中缓存时返回副本
func (g *CachedStoryGenerator) GenerateStories(ctx context.Context, description string) ([]Story, error) {
	key := cacheKey("stories", description)
	if v, ok := g.cache.Get(key); ok {
		if stories, ok := v.([]Story); ok {
			return append([]Story(nil), stories...), nil
		}
	}

	stories, err := g.inner.GenerateStories(ctx, description)
	if err != nil {
		return nil, err
	}
	_ = g.cache.Set(key, append([]Story(nil), stories...), g.ttl)
	return stories, nil
}
