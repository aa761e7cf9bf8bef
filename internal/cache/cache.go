// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/promptbazaar/promptbazaar-backend/internal/config"
)

// Cache wraps a redis client used only for read-side aggregates (leaderboard,
// trending). Purchase and access state is never cached here. A nil client
// degrades every operation to a miss so the service keeps working without
// redis.
type Cache struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, continuing without cache")
		return &Cache{}
	}

	logrus.Info("Redis connection established")
	return &Cache{client: client}
}

// NewDisabled returns a cache with no backing client; every read is a miss
// and every write is dropped.
func NewDisabled() *Cache {
	return &Cache{}
}

func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GetJSON reports (true, nil) on a hit with dest populated, (false, nil) on a
// miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// Fetch tries the cache first; on miss it calls fetch (which must populate
// dest) and stores the result best-effort.
func (c *Cache) Fetch(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return nil
}
