package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/user"
	repo "aiPlanner/internal/repository"

	"go.uber.org/zap"
)

// Store хранит всех пользователей одним документом ai_planner_users
type Store struct {
	docs repo.DocumentStore
}

func New(docs repo.DocumentStore) *Store {
	return &Store{docs: docs}
}

func (s *Store) Load(ctx context.Context) ([]*user.User, error) {
	raw, err := s.docs.Get(ctx, repo.UsersKey)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []*user.User{}, nil
		}
		return nil, fmt.Errorf("загрузка пользователей: %w", err)
	}

	var users []*user.User
	if err := json.Unmarshal(raw, &users); err != nil {
		logger.Warn("Repository: Повреждённый список пользователей, используется пустой", zap.Error(err))
		return []*user.User{}, nil
	}

	result := make([]*user.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			result = append(result, u)
		}
	}
	return result, nil
}

func (s *Store) Save(ctx context.Context, users []*user.User) error {
	if users == nil {
		users = []*user.User{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("сериализация пользователей: %w", err)
	}
	if err := s.docs.Put(ctx, repo.UsersKey, raw); err != nil {
		return fmt.Errorf("сохранение пользователей: %w", err)
	}
	return nil
}

// MigrateLegacy переносит однопользовательский раздел старой версии администратору.
// Существующий раздел администратора перезаписывается
func (s *Store) MigrateLegacy(ctx context.Context, adminUsername string) (bool, error) {
	if _, err := s.docs.Get(ctx, repo.LegacyTasksKey); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("проверка старого раздела: %w", err)
	}

	if err := s.docs.Move(ctx, repo.LegacyTasksKey, repo.TasksKey(adminUsername)); err != nil {
		return false, fmt.Errorf("миграция старого раздела: %w", err)
	}

	logger.Info("Repository: Старые задачи перенесены администратору", zap.String("username", adminUsername))
	return true, nil
}
