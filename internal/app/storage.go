package app

import (
	"context"
	"fmt"

	"aiPlanner/internal/config"
	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"
	boltdoc "aiPlanner/internal/repository/document/bolt"
	memdoc "aiPlanner/internal/repository/document/inmemory"
	pgdoc "aiPlanner/internal/repository/document/postgres"
	redisdoc "aiPlanner/internal/repository/document/redis"
	sqlitedoc "aiPlanner/internal/repository/document/sqlite"
	memsession "aiPlanner/internal/repository/session/inmemory"
	redissession "aiPlanner/internal/repository/session/redis"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Storage собирает хранилище документов и сессий по конфигу.
// Клиент Redis создаётся один раз и общий для обоих
type Storage struct {
	Docs     repo.DocumentStore
	Sessions repo.SessionStore

	// SweepSessions истинно, если истёкшие сессии нужно чистить самим
	SweepSessions bool

	redis *goRedis.Client
}

func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := &Storage{}

	docs, err := s.openDocuments(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Docs = docs

	switch cfg.Auth.SessionStore {
	case "redis":
		client, err := s.redisClient(cfg.Storage.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Sessions = redissession.NewSessionStorage(client, cfg.Auth.SessionTTL)
	default:
		s.Sessions = memsession.NewSessionStorage()
		s.SweepSessions = true
	}

	logger.Info("Repository: Хранилище готово",
		zap.String("documents", cfg.Storage.Type),
		zap.String("sessions", cfg.Auth.SessionStore))
	return s, nil
}

func (s *Storage) openDocuments(ctx context.Context, cfg *config.Config) (repo.DocumentStore, error) {
	switch cfg.Storage.Type {
	case "inmemory":
		logger.Warn("Repository: Данные хранятся только в памяти и пропадут при остановке")
		return memdoc.NewDocumentStorage(), nil
	case "bolt":
		return boltdoc.Open(cfg.Storage.Bolt.Path, cfg.Storage.Bolt.Bucket)
	case "sqlite":
		return sqlitedoc.Open(ctx, cfg.Storage.SQLite.Path)
	case "postgres":
		if cfg.Storage.Postgres.Migrate {
			if err := pgdoc.RunMigrations(cfg.Storage.Postgres.URL); err != nil {
				return nil, err
			}
		}
		return pgdoc.New(ctx, cfg.Storage.Postgres)
	case "redis":
		client, err := s.redisClient(cfg.Storage.Redis)
		if err != nil {
			return nil, err
		}
		return redisdoc.New(client), nil
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Storage.Type)
	}
}

func (s *Storage) redisClient(cfg config.RedisConfig) (*goRedis.Client, error) {
	if s.redis != nil {
		return s.redis, nil
	}
	client, err := redisdoc.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	s.redis = client
	return client, nil
}

func (s *Storage) Close() {
	if s.Docs != nil {
		if err := s.Docs.Close(); err != nil {
			logger.Error("Repository: Ошибка закрытия хранилища", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Error("Repository: Ошибка закрытия Redis", err)
		}
	}
}
