package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"veredapos/internal/model"

	"github.com/redis/go-redis/v9"
)

const menuCacheKey = "cache:public_menu"

// MenuCache keeps the rendered public menu in Redis. Guests scanning the QR
// code hit this path far more often than the catalog changes.
type MenuCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMenuCache(rdb *redis.Client, ttl time.Duration) *MenuCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MenuCache{rdb: rdb, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *MenuCache) Get(ctx context.Context) (*model.PublicMenu, error) {
	raw, err := c.rdb.Get(ctx, menuCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m model.PublicMenu
	if err := json.Unmarshal(raw, &m); err != nil {
		// a corrupt entry is a miss; the next Set overwrites it
		return nil, nil
	}
	return &m, nil
}

func (c *MenuCache) Set(ctx context.Context, m *model.PublicMenu) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, menuCacheKey, raw, c.ttl).Err()
}

func (c *MenuCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, menuCacheKey).Err()
}
