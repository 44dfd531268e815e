package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Storage struct {
	client *goRedis.Client
	owned  bool
}

// New оборачивает уже открытый клиент, закрывать его будет владелец
func New(client *goRedis.Client) *Storage {
	return &Storage{client: client}
}

// Open забирает клиента во владение, Close его закроет
func Open(client *goRedis.Client) *Storage {
	return &Storage{client: client, owned: true}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить документ", err, zap.String("key", key))
		return nil, fmt.Errorf("получение документа: %w", err)
	}
	return value, nil
}

func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		logger.Error("Repository: Не удалось записать документ", err, zap.String("key", key))
		return fmt.Errorf("запись документа: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("удаление документа: %w", err)
	}
	return nil
}

// Move делает RENAME под WATCH, отсутствующий источник пропускается
func (s *Storage) Move(ctx context.Context, from, to string) error {
	err := s.client.Watch(ctx, func(tx *goRedis.Tx) error {
		n, err := tx.Exists(ctx, from).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
			pipe.Rename(ctx, from, to)
			return nil
		})
		return err
	}, from)

	if err != nil {
		logger.Error("Repository: Не удалось перенести документ", err, zap.String("from", from), zap.String("to", to))
		return fmt.Errorf("перенос документа: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	if !s.owned {
		return nil
	}
	logger.Info("Repository: Закрытие соединения Redis")
	return s.client.Close()
}
