package inmemory

import (
	"context"
	"sync"

	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"

	"go.uber.org/zap"
)

type DocumentStorage struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
}

func NewDocumentStorage() *DocumentStorage {
	return &DocumentStorage{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
	}
}

func (s *DocumentStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *DocumentStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *DocumentStorage) Put(ctx context.Context, key string, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[key] = append([]byte(nil), value...)
	return nil
}

func (s *DocumentStorage) Delete(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, key)
	return nil
}

// перенос под одной блокировкой, поэтому читатели не видят промежуточного состояния
func (s *DocumentStorage) Move(ctx context.Context, from, to string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	value, ok := s.storage[from]
	if !ok {
		logger.Debug("Repository: Нечего переносить", zap.String("from", from))
		return nil
	}
	s.storage[to] = value
	delete(s.storage, from)
	return nil
}

func (s *DocumentStorage) Close() error {
	return nil
}

// Keys нужен тестам и CLI для просмотра содержимого
func (s *DocumentStorage) Keys() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	keys := make([]string, 0, len(s.storage))
	for key := range s.storage {
		keys = append(keys, key)
	}
	return keys
}
