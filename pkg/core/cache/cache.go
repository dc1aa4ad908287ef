package cache

import (
	"sync"
	"time"
)

// DefaultCleanInterval 过期条目的默认清理间隔
const DefaultCleanInterval = time.Minute

// ResultCache 生成结果缓存接口（对外导出）
type ResultCache interface {
	// Set 设置缓存值，ttl<=0时使用缓存的默认有效期
	Set(key string, value interface{}, ttl time.Duration) error

	// Get 获取缓存值
	// 返回: 缓存值和是否存在（已过期视为不存在）
	Get(key string) (interface{}, bool)

	// Delete 删除缓存值
	Delete(key string) error

	// Clear 清空所有缓存
	Clear() error

	// Close 停止后台清理
	Close() error
}

// cacheEntry 缓存条目（内部使用）
type cacheEntry struct {
	value      interface{}
	expireTime time.Time
}

// MemoryResultCache 内存结果缓存实现（对外导出）
type MemoryResultCache struct {
	mu         sync.RWMutex
	cache      map[string]*cacheEntry
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryResultCache 创建内存结果缓存实例（对外导出）
// defaultTTL: Set未指定有效期时使用；cleanInterval<=0时使用DefaultCleanInterval
func NewMemoryResultCache(defaultTTL, cleanInterval time.Duration) *MemoryResultCache {
	if cleanInterval <= 0 {
		cleanInterval = DefaultCleanInterval
	}
	c := &MemoryResultCache{
		cache:      make(map[string]*cacheEntry),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	// 启动清理协程，定期清理过期缓存
	go c.cleanupExpired(cleanInterval)
	return c
}

// Set 设置缓存值
func (c *MemoryResultCache) Set(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return nil // 空key，忽略
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		value:      value,
		expireTime: time.Now().Add(ttl),
	}
	return nil
}

// Get 获取缓存值
func (c *MemoryResultCache) Get(key string) (interface{}, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	entry, exists := c.cache[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	// 已过期，删除并返回不存在
	if time.Now().After(entry.expireTime) {
		c.mu.Lock()
		if current, ok := c.cache[key]; ok && current == entry {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Delete 删除缓存值
func (c *MemoryResultCache) Delete(key string) error {
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Clear 清空所有缓存
func (c *MemoryResultCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cacheEntry)
	return nil
}

// Len 当前条目数（包含尚未清理的过期条目）
func (c *MemoryResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close 停止清理协程，可重复调用
func (c *MemoryResultCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired 清理过期缓存（内部方法）
func (c *MemoryResultCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *MemoryResultCache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.cache {
		if now.After(entry.expireTime) {
			delete(c.cache, key)
		}
	}
}

// NopCache 不缓存任何内容（storage.cache.enabled=false时使用）
type NopCache struct{}

func (NopCache) Set(string, interface{}, time.Duration) error { return nil }
func (NopCache) Get(string) (interface{}, bool)               { return nil, false }
func (NopCache) Delete(string) error                          { return nil }
func (NopCache) Clear() error                                 { return nil }
func (NopCache) Close() error                                 { return nil }
