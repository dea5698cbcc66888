package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisStorage - the redis connection backing the finished-game archive.
type RedisStorage struct {
	logger     *slog.Logger
	Connection *redis.Client
}

func NewRedisStorage(ctx context.Context, logger *slog.Logger, addr string) (*RedisStorage, error) {
	log := logger.With("component", "redis-storage")

	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("connected to redis", "addr", addr)

	return &RedisStorage{logger: log, Connection: conn}, nil
}

func (that *RedisStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	that.logger.Info("redis connection closed")

	return nil
}
