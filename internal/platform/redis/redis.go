package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"polygreen-backend/internal/common/config"
	"polygreen-backend/internal/common/logger"
)

// Client is the Redis connection shared by the admin session store and the
// OTP send limiter.
type Client struct {
	*redis.Client
}

// Open connects to Redis and verifies it is reachable.
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return &Client{Client: c}, nil
}
