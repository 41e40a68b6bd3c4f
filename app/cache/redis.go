package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedKeyPrefix = "feed:"

// Cache keeps raw feed bodies in Redis so repeated runs within the TTL skip
// the network.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "ttl", ttl.String())

	return &Cache{client: client, ttl: ttl}, nil
}

// GenerateFeedKey derives a stable, short key from a feed URL.
func GenerateFeedKey(feedURL string) string {
	hash := sha256.Sum256([]byte(feedURL))
	return fmt.Sprintf("%s%x", feedKeyPrefix, hash[:8])
}

func (c *Cache) GetFeedData(ctx context.Context, feedURL string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, GenerateFeedKey(feedURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached feed %s: %w", feedURL, err)
	}
	return data, true, nil
}

func (c *Cache) SetFeedData(ctx context.Context, feedURL string, data []byte) error {
	if err := c.client.Set(ctx, GenerateFeedKey(feedURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache feed %s: %w", feedURL, err)
	}
	return nil
}

func (c *Cache) Health(ctx context.Context) map[string]any {
	health := map[string]any{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}

	return health
}

func (c *Cache) Close() error {
	return c.client.Close()
}
