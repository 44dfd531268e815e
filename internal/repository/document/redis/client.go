package redis

import (
	"context"
	"fmt"
	"time"

	"aiPlanner/internal/config"

	goRedis "github.com/redis/go-redis/v9"
)

// NewClient создаёт клиента Redis и проверяет соединение.
// Клиент общий для документов и сессий
func NewClient(cfg config.RedisConfig) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("разбор redis url: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	return client, nil
}
