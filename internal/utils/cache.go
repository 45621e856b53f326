package utils

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据、过期时间和标签
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
	Tags      []string
}

// Cache 带标签的本地 LRU 缓存。按标签失效，用于页面数据重新验证。
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
	mu       sync.Mutex
	tags     map[string]map[string]struct{} // tag -> keys
}

// NewCache 创建容量为 size 的缓存
func NewCache(size int) *Cache {
	c := &Cache{tags: make(map[string]map[string]struct{})}
	l, err := lru.NewWithEvict[string, CacheItem](size, func(key string, item CacheItem) {
		c.untag(key, item.Tags)
	})
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	c.lruCache = l
	return c
}

// Set 设置缓存，TTL 为过期时间
func (c *Cache) Set(key string, data interface{}, ttl time.Duration, tags ...string) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		Tags:      tags,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Get 获取缓存，若不存在或已过期则返回 nil
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete 删除指定缓存
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

// InvalidateTags 删除带有任一标签的缓存，返回删除数量
func (c *Cache) InvalidateTags(tags ...string) int {
	c.mu.Lock()
	var keys []string
	for _, tag := range tags {
		for key := range c.tags[tag] {
			keys = append(keys, key)
		}
		delete(c.tags, tag)
	}
	c.mu.Unlock()

	removed := 0
	for _, key := range keys {
		if c.lruCache.Remove(key) {
			removed++
		}
	}
	return removed
}

// Len 当前缓存条目数
func (c *Cache) Len() int {
	return c.lruCache.Len()
}

func (c *Cache) untag(key string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}
