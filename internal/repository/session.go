package repository

import (
	"context"
	"time"
)

// Session связывает id сессии из токена с именем пользователя
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	// Get возвращает ErrNotFound и для истёкших сессий
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// Rename перенаправляет живые сессии пользователя на новое имя
	Rename(ctx context.Context, oldUsername, newUsername string) error
	DeleteByUsername(ctx context.Context, username string) error
	// Sweep удаляет истёкшие сессии и возвращает их число
	Sweep(ctx context.Context, now time.Time) (int, error)
}
