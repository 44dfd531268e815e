package partition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/task"
	repo "aiPlanner/internal/repository"

	"go.uber.org/zap"
)

// Store читает и пишет раздел задач пользователя целиком, одним JSON-массивом
type Store struct {
	docs repo.DocumentStore
}

func New(docs repo.DocumentStore) *Store {
	return &Store{docs: docs}
}

// Load никогда не падает на битых данных: отсутствующий или нечитаемый раздел это пустой список
func (s *Store) Load(ctx context.Context, username string) ([]*task.Task, error) {
	raw, err := s.docs.Get(ctx, repo.TasksKey(username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []*task.Task{}, nil
		}
		return nil, fmt.Errorf("загрузка раздела %s: %w", username, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Warn("Repository: Повреждённый раздел задач, используется пустой список",
			zap.String("username", username), zap.Error(err))
		return []*task.Task{}, nil
	}

	// одна битая запись не должна стоить пользователю остальных задач
	result := make([]*task.Task, 0, len(records))
	for i, record := range records {
		var t *task.Task
		if err := json.Unmarshal(record, &t); err != nil {
			logger.Warn("Repository: Пропущена нечитаемая задача",
				zap.String("username", username), zap.Int("index", i), zap.Error(err))
			continue
		}
		// null в массиве не считаем задачей
		if t != nil {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) Save(ctx context.Context, username string, tasks []*task.Task) error {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("сериализация раздела: %w", err)
	}
	if err := s.docs.Put(ctx, repo.TasksKey(username), raw); err != nil {
		return fmt.Errorf("сохранение раздела %s: %w", username, err)
	}
	return nil
}

// Move переносит раздел при переименовании пользователя
func (s *Store) Move(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	if err := s.docs.Move(ctx, repo.TasksKey(from), repo.TasksKey(to)); err != nil {
		return fmt.Errorf("перенос раздела %s -> %s: %w", from, to, err)
	}
	logger.Info("Repository: Раздел задач перенесён", zap.String("from", from), zap.String("to", to))
	return nil
}

func (s *Store) Drop(ctx context.Context, username string) error {
	if err := s.docs.Delete(ctx, repo.TasksKey(username)); err != nil {
		return fmt.Errorf("удаление раздела %s: %w", username, err)
	}
	return nil
}
