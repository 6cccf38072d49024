package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
)

// Cache mirrors the latest estimates into a Redis hash and publishes each
// refresh payload to a channel, so other consumers (widgets, bots) can
// follow along without hitting the upstream themselves.
type Cache struct {
	rdb       *redis.Client
	keyLatest string // prefix + ":estimates"
	channel   string
	ttl       time.Duration
}

func New(rdb *redis.Client, prefix, channel string, ttl time.Duration) *Cache {
	if strings.TrimSpace(prefix) == "" {
		prefix = "fundtrack"
	}
	if strings.TrimSpace(channel) == "" {
		channel = prefix + ":refresh"
	}
	return &Cache{
		rdb:       rdb,
		keyLatest: prefix + ":estimates",
		channel:   channel,
		ttl:       ttl,
	}
}

func (c *Cache) PutEstimates(ctx context.Context, estimates map[string]model.Estimate) error {
	if len(estimates) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for code, est := range estimates {
		b, err := json.Marshal(est)
		if err != nil {
			return fmt.Errorf("marshal estimate %s: %w", code, err)
		}
		pipe.HSet(ctx, c.keyLatest, code, string(b))
	}
	if c.ttl > 0 {
		pipe.Expire(ctx, c.keyLatest, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Cache) PublishRefresh(ctx context.Context, payload []byte) error {
	return c.rdb.Publish(ctx, c.channel, payload).Err()
}

func (c *Cache) Close() error { return c.rdb.Close() }

var _ port.EstimateCache = (*Cache)(nil)
