package database

import (
	"context"
	"fmt"
	"time"

	"go-pos/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

type RedisDB struct {
	Client *redis.Client
}

// NewRedis connects to Redis; it backs the session store and, when
// configured, the shared token blacklist.
func NewRedis(lc fx.Lifecycle, cfg *config.Config) (*RedisDB, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return &RedisDB{Client: client}, nil
}
