package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only if the lease token still matches, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is the distributed Locker: a SetNX lease with a TTL, polled
// until acquired. The lease bounds how long a crashed holder can block others.
type RedisLocker struct {
	client       *redis.Client
	lease        time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewRedisLocker(client *redis.Client, lease time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client:       client,
		lease:        lease,
		pollInterval: 50 * time.Millisecond,
		logger:       logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, entityID string) (func(), error) {
	key := lockKey(entityID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-time.After(l.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("entity lock release failed, lease will expire on its own",
			zap.String("key", key), zap.Error(err))
	}
}

func lockKey(entityID string) string {
	return "lock:entity:" + entityID
}

var _ Locker = (*RedisLocker)(nil)
