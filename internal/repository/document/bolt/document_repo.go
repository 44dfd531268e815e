package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Storage хранит документы в одном bucket файла BoltDB
type Storage struct {
	db     *bolt.DB
	bucket []byte
}

func Open(path string, bucket string) (*Storage, error) {
	if bucket == "" {
		bucket = "documents"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Error("Repository: Не удалось открыть BoltDB", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие bolt: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("создание bucket: %w", err)
	}

	logger.Info("Repository: BoltDB открыта", zap.String("path", path))
	return &Storage{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return fmt.Errorf("bucket %s отсутствует", s.bucket)
		}
		return nil
	})
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(s.bucket).Get([]byte(key))
		if stored == nil {
			return repo.ErrNotFound
		}
		// значение валидно только внутри транзакции
		value = append([]byte(nil), stored...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	if err != nil {
		logger.Error("Repository: Не удалось записать документ", err, zap.String("key", key))
		return fmt.Errorf("запись документа: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Storage) Move(ctx context.Context, from, to string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		value := b.Get([]byte(from))
		if value == nil {
			return nil
		}
		copied := append([]byte(nil), value...)
		if err := b.Put([]byte(to), copied); err != nil {
			return fmt.Errorf("копирование документа: %w", err)
		}
		return b.Delete([]byte(from))
	})
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	logger.Info("Repository: Закрытие BoltDB")
	return s.db.Close()
}
