package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/redis/go-redis/v9"
)

const titleKeyPattern = "yamdb:title:*"

func titleKey(id int64) string { return fmt.Sprintf("yamdb:title:%d", id) }

// TitleCache keeps rendered title read shapes in redis. A nil *TitleCache is
// valid and caches nothing, which is how the API runs without REDIS_URL.
type TitleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTitleCache(rdb *redis.Client, ttl time.Duration) *TitleCache {
	if rdb == nil {
		return nil
	}
	return &TitleCache{rdb: rdb, ttl: ttl}
}

// Connect parses a redis URL and pings it. An empty URL disables caching.
func Connect(ctx context.Context, url, password string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (c *TitleCache) Get(ctx context.Context, id int64) (*dto.TitleResponse, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, titleKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "title_cache_get_failed", "title_id", id, "error", err)
		}
		return nil, false
	}
	var title dto.TitleResponse
	if err := json.Unmarshal(b, &title); err != nil {
		return nil, false
	}
	return &title, true
}

func (c *TitleCache) Set(ctx context.Context, id int64, title *dto.TitleResponse) {
	if c == nil || title == nil {
		return
	}
	data, err := json.Marshal(title)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, titleKey(id), data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "title_cache_set_failed", "title_id", id, "error", err)
	}
}

func (c *TitleCache) Invalidate(ctx context.Context, id int64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, titleKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "title_cache_invalidate_failed", "title_id", id, "error", err)
	}
}

// InvalidateAll drops every cached title, batching deletes through a pipeline.
func (c *TitleCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, titleKeyPattern, 1000).Iterator()
	pipe := c.rdb.Pipeline()
	n := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		n++
		if n%200 == 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				slog.WarnContext(ctx, "title_cache_flush_failed", "error", err)
				return
			}
		}
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "title_cache_flush_failed", "error", err)
		return
	}
	if n%200 != 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			slog.WarnContext(ctx, "title_cache_flush_failed", "error", err)
		}
	}
}
