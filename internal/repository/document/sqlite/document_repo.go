package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Storage struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// один писатель, иначе SQLITE_BUSY при параллельных записях
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		logger.Error("Repository: Ошибка миграции sqlite", err)
		return nil, fmt.Errorf("миграция: %w", err)
	}

	logger.Info("Repository: SQLite открыта", zap.String("path", path))
	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить документ", err, zap.String("key", key))
		return nil, fmt.Errorf("получение документа: %w", err)
	}
	return []byte(value), nil
}

func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	query := `INSERT INTO documents (key, value, updated_at)
				VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		logger.Error("Repository: Не удалось записать документ", err, zap.String("key", key))
		return fmt.Errorf("запись документа: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("удаление документа: %w", err)
	}
	return nil
}

func (s *Storage) Move(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (key, value, updated_at)
			SELECT ?, value, CURRENT_TIMESTAMP FROM documents WHERE key = ?`, to, from)
	if err != nil {
		return fmt.Errorf("копирование документа: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, from); err != nil {
		return fmt.Errorf("удаление старого документа: %w", err)
	}
	return tx.Commit()
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие SQLite")
	return s.db.Close()
}
