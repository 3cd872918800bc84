package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "goonhub:ratelimit:"

// Redis is a GCRA limiter shared by every API instance. When Redis is
// unreachable it defers to the fallback limiter.
type Redis struct {
	limiter  *redis_rate.Limiter
	limit    redis_rate.Limit
	fallback Limiter
	logger   *zap.Logger
}

// NewRedis creates a Redis backed limiter.
func NewRedis(client *redis.Client, requestsPerMinute, burst int, fallback Limiter, logger *zap.Logger) *Redis {
	return &Redis{
		limiter:  redis_rate.NewLimiter(client),
		limit:    redis_rate.Limit{Rate: requestsPerMinute, Period: time.Minute, Burst: burst},
		fallback: fallback,
		logger:   logger,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := r.limiter.Allow(ctx, keyPrefix+key, r.limit)
	if err != nil {
		if r.fallback == nil {
			return Decision{}, fmt.Errorf("redis rate limit check failed: %w", err)
		}
		r.logger.Warn("redis rate limiter unavailable, using local fallback", zap.Error(err))
		return r.fallback.Allow(ctx, key)
	}
	if res.Allowed == 0 {
		return Decision{Allowed: false, RetryAfter: res.RetryAfter}, nil
	}
	return Decision{Allowed: true}, nil
}

// ConnectRedis parses a redis:// URL and verifies the server responds.
func ConnectRedis(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	logger.Info("Connected to Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
