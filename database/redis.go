package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/config"
)

// NewRedisClient initializes a Redis client and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", opts.Addr))
	return client, nil
}

// OpenKVStore builds the key-value store for the given driver. The returned
// close func releases the backend connection.
func OpenKVStore(ctx context.Context, driver, redisURL string, ttl time.Duration, logger *zap.Logger) (KVStore, func() error, error) {
	switch driver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, state is lost on restart")
		return NewMemoryKVStore(), func() error { return nil }, nil
	case config.StoreDriverRedis, "":
		client, err := NewRedisClient(ctx, redisURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisKVStore(client, ttl), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
