package repository

import "context"

// DocumentStore хранит целые JSON-документы по ключу. Частичных обновлений нет.
type DocumentStore interface {
	HealthCheck(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Move атомарно переносит документ: копия под новым ключом и удаление старого.
	// Отсутствие исходного документа не ошибка.
	Move(ctx context.Context, from, to string) error
	Close() error
}
