package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	repo "aiPlanner/internal/repository"

	goRedis "github.com/redis/go-redis/v9"
)

// SessionStorage хранит сессии с TTL, плюс множество id сессий на пользователя
// для переименования и удаления
type SessionStorage struct {
	client *goRedis.Client
	ttl    time.Duration
}

func NewSessionStorage(client *goRedis.Client, ttl time.Duration) *SessionStorage {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStorage{client: client, ttl: ttl}
}

func (s *SessionStorage) Save(ctx context.Context, session *repo.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("пустая сессия")
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = s.ttl
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
		pipe.Set(ctx, repo.SessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, userIndexKey(session.Username), session.ID)
		// индекс живёт не меньше самой долгой сессии пользователя
		pipe.ExpireNX(ctx, userIndexKey(session.Username), ttl)
		pipe.ExpireGT(ctx, userIndexKey(session.Username), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	return nil
}

func (s *SessionStorage) Get(ctx context.Context, id string) (*repo.Session, error) {
	result, err := s.client.Get(ctx, repo.SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение сессии: %w", err)
	}

	var session repo.Session
	if err := json.Unmarshal(result, &session); err != nil {
		return nil, fmt.Errorf("разбор сессии: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
		pipe.Del(ctx, repo.SessionKey(id))
		pipe.SRem(ctx, userIndexKey(session.Username), id)
		return nil
	})
	return err
}

func (s *SessionStorage) Rename(ctx context.Context, oldUsername, newUsername string) error {
	ids, err := s.client.SMembers(ctx, userIndexKey(oldUsername)).Result()
	if err != nil {
		return fmt.Errorf("чтение индекса сессий: %w", err)
	}

	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return err
		}
		session.Username = newUsername

		payload, err := json.Marshal(session)
		if err != nil {
			return err
		}
		if err := s.client.SetArgs(ctx, repo.SessionKey(id), payload, goRedis.SetArgs{KeepTTL: true}).Err(); err != nil {
			return fmt.Errorf("обновление сессии: %w", err)
		}
		if err := s.client.SAdd(ctx, userIndexKey(newUsername), id).Err(); err != nil {
			return err
		}
		if err := s.client.Expire(ctx, userIndexKey(newUsername), s.ttl).Err(); err != nil {
			return err
		}
	}

	return s.client.Del(ctx, userIndexKey(oldUsername)).Err()
}

func (s *SessionStorage) DeleteByUsername(ctx context.Context, username string) error {
	ids, err := s.client.SMembers(ctx, userIndexKey(username)).Result()
	if err != nil {
		return fmt.Errorf("чтение индекса сессий: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, repo.SessionKey(id))
	}
	keys = append(keys, userIndexKey(username))

	return s.client.Del(ctx, keys...).Err()
}

// Sweep ничего не делает: истечение обеспечивает TTL Redis
func (s *SessionStorage) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func userIndexKey(username string) string {
	return repo.SessionKeyPrefix + ":by_user:" + username
}
