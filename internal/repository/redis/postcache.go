package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/Inkwell/internal/domain/post"

	"github.com/redis/go-redis/v9"
)

const postKeyPrefix = "post:slug:"

// PostCache holds rendered posts by slug so hot reads skip Postgres.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PostCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on cache miss.
func (c *PostCache) Get(ctx context.Context, slug string) (*post.Post, error) {
	raw, err := c.client.Get(ctx, postKeyPrefix+slug).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("post cache get: %w", err)
	}
	var p post.Post
	if err := json.Unmarshal(raw, &p); err != nil {
		// Stale format, treat as miss.
		_ = c.client.Del(ctx, postKeyPrefix+slug).Err()
		return nil, nil
	}
	return &p, nil
}

func (c *PostCache) Set(ctx context.Context, p *post.Post) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("post cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, postKeyPrefix+p.Slug, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("post cache set: %w", err)
	}
	return nil
}

func (c *PostCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, postKeyPrefix+slug).Err(); err != nil {
		return fmt.Errorf("post cache del: %w", err)
	}
	return nil
}
