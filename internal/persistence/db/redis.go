package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hilthontt/ember/internal/infrastructure/configs"
	"github.com/redis/go-redis/v9"
)

const DefaultConnectionTimeout = 10 * time.Second

func NewRedisClient(ctx context.Context, cfg configs.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, DefaultConnectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Printf("Successfully connected to Redis at %s", cfg.Addr)
	return client, nil
}

func CloseRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}

	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	log.Println("Disconnected from Redis")
	return nil
}
