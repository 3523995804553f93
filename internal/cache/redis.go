package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verastro/roombroker/config"
)

// RedisTier is the shared cache tier, reachable by every instance of the
// service so a multi-request flow can continue on any process.
type RedisTier struct {
	client *redis.Client
}

func NewRedisTier(cfg config.RedisConfig) *RedisTier {
	return &RedisTier{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// NewRedisTierFromClient wraps an existing client; lets the lock package share
// the connection pool.
func NewRedisTierFromClient(client *redis.Client) *RedisTier {
	return &RedisTier{client: client}
}

func (t *RedisTier) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, key, payload, ttl).Err()
}

func (t *RedisTier) TryGet(ctx context.Context, key string, dest any) (bool, error) {
	data, err := t.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

var _ Tier = (*RedisTier)(nil)
