package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"playhub/internal/utils"

	"github.com/redis/go-redis/v9"
)

// 缓存标签
const (
	TagGames    = "games"
	TagTaxonomy = "taxonomy"
	TagSite     = "site"

	RevalidateChannel = "playhub:revalidate"
)

func GameTag(id uint) string {
	return fmt.Sprintf("game:%d", id)
}

// Revalidator 按标签让页面缓存失效。配置了 Redis 时把失效广播给其他实例。
type Revalidator struct {
	cache  *utils.Cache
	client *redis.Client
}

// NewRevalidator redisURL 为空时只做本地失效
func NewRevalidator(cache *utils.Cache, redisURL string) (*Revalidator, error) {
	r := &Revalidator{cache: cache}
	if redisURL == "" {
		return r, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	r.client = redis.NewClient(opt)
	return r, nil
}

// Revalidate 本地删除并广播
func (r *Revalidator) Revalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	n := r.cache.InvalidateTags(tags...)
	slog.Debug("cache revalidated", "tags", tags, "removed", n)

	if r.client == nil {
		return
	}
	if err := r.client.Publish(ctx, RevalidateChannel, strings.Join(tags, ",")).Err(); err != nil {
		slog.Warn("publish revalidation failed", "tags", tags, "error", err)
	}
}

// Listen 订阅其他实例的失效消息，阻塞直到 ctx 结束
func (r *Revalidator) Listen(ctx context.Context) {
	if r.client == nil {
		return
	}
	sub := r.client.Subscribe(ctx, RevalidateChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			tags := strings.Split(msg.Payload, ",")
			r.cache.InvalidateTags(tags...)
		}
	}
}

// Ping 健康检查用；未配置 Redis 时返回 nil
func (r *Revalidator) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

func (r *Revalidator) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
