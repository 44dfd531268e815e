package main

import (
	"context"
	"fmt"

	"aiPlanner/internal/app"
	"aiPlanner/internal/config"
	"aiPlanner/internal/logger"
)

type globalOptions struct {
	configPath string
	output     string
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	// в консоли нужны только предупреждения
	if err := logger.Init(cfg.Logging.Development, "warn"); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	app.ApplyLocation(cfg)
	return cfg, nil
}

// withServices открывает хранилище из конфига, выполняет fn и закрывает хранилище
func (o *globalOptions) withServices(ctx context.Context, fn func(cfg *config.Config, s *app.Services) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	services, err := app.NewServices(ctx, cfg, storage)
	if err != nil {
		return err
	}
	return fn(cfg, services)
}
