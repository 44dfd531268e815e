package inmemory

import (
	"context"
	"sync"
	"time"

	repo "aiPlanner/internal/repository"
)

type SessionStorage struct {
	sessions map[string]repo.Session
	mtx      *sync.RWMutex
	now      func() time.Time
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[string]repo.Session),
		mtx:      &sync.RWMutex{},
		now:      time.Now,
	}
}

func (s *SessionStorage) Save(_ context.Context, session *repo.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStorage) Get(_ context.Context, id string) (*repo.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	session, ok := s.sessions[id]
	if !ok || session.Expired(s.now()) {
		return nil, repo.ErrNotFound
	}
	return &session, nil
}

func (s *SessionStorage) Delete(_ context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionStorage) Rename(_ context.Context, oldUsername, newUsername string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, session := range s.sessions {
		if session.Username == oldUsername {
			session.Username = newUsername
			s.sessions[id] = session
		}
	}
	return nil
}

func (s *SessionStorage) DeleteByUsername(_ context.Context, username string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, session := range s.sessions {
		if session.Username == username {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *SessionStorage) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len нужен для метрик и тестов
func (s *SessionStorage) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.sessions)
}
