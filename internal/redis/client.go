package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/config"
)

// Client wraps the Redis client used for catalog caching. The cache is a
// read-through optimization only; the service works without it.
type Client struct {
	*redis.Client
	logger zerolog.Logger
}

// NewClient creates a new Redis client with the provided configuration.
func NewClient(cfg *config.RedisConfig, logger zerolog.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Str("addr", addr).Int("db", cfg.DB).Msg("Redis connected")
	return &Client{Client: rdb, logger: logger}, nil
}
