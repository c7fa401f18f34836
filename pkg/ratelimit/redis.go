package ratelimit

import (
	"context"
	"time"

	"sosmed/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares the counters between instances. Each key lives for
// one window; the first hit in a window sets its expiry.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
}

func NewRedis(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{Client: client, Prefix: "ratelimit:"}
}

// ConnectRedis opens a client and checks it answers PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	logger.Sugar.Infof("Redis connected at %s", addr)
	return client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	k := l.Prefix + key

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Sugar.Errorf("Rate limit counter %s failed: %v", k, err)
		return false, 0, err
	}

	count := incr.Val()
	remaining := ttl.Val()
	if count == 1 || remaining < 0 {
		if err := l.Client.PExpire(ctx, k, window).Err(); err != nil {
			logger.Sugar.Errorf("Rate limit expiry %s failed: %v", k, err)
			return false, 0, err
		}
		remaining = window
	}

	if count > int64(limit) {
		return false, remaining, nil
	}
	return true, remaining, nil
}
