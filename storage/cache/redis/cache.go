package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

const (
	keyPrefix         = "vitrine:page:"
	connectionTimeout = 5 * time.Second
)

// PageCache keeps encoded public pages in Redis.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ content.Cache = (*PageCache)(nil) // interface compliance check

// NewClient connects to Redis and checks the connection.
func NewClient(conf core.RedisConfig) (*redis.Client, error) {
	if conf.Address == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return client, nil
}

// NewPageCache stores pages for ttl; zero keeps them until invalidated.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading cached page %q", key)
	}
	return data, true, nil
}

func (c *PageCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "caching page %q", key)
	}
	return nil
}

func (c *PageCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "invalidating page %q", key)
	}
	return nil
}
