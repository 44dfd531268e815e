package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiPlanner/internal/auth"
	"aiPlanner/internal/config"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/user"
	repo "aiPlanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IdentityStore interface {
	Load(ctx context.Context) ([]*user.User, error)
	Save(ctx context.Context, users []*user.User) error
	MigrateLegacy(ctx context.Context, adminUsername string) (bool, error)
}

type TokenManager interface {
	Issue(sessionID, username string, now time.Time) (string, time.Time, error)
	Parse(token string) (*auth.Claims, error)
	TTL() time.Duration
}

type UserService struct {
	core     *Core
	identity IdentityStore
	sessions repo.SessionStore
	tokens   TokenManager
	admin    config.AdminConfig
	users    []*user.User
}

func NewUserService(core *Core, identity IdentityStore, sessions repo.SessionStore, tokens TokenManager, admin config.AdminConfig) *UserService {
	return &UserService{
		core:     core,
		identity: identity,
		sessions: sessions,
		tokens:   tokens,
		admin:    admin,
		users:    []*user.User{},
	}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	SessionID string
	User      *user.User
}

// Load читает пользователей, гарантирует администратора и переносит старый раздел
func (s *UserService) Load(ctx context.Context) error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	users, err := s.identity.Load(ctx)
	if err != nil {
		return fmt.Errorf("загрузка пользователей: %w", err)
	}

	if s.indexByUsername(users, s.admin.Username) < 0 {
		users = append(users, &user.User{
			ID:       s.admin.ID,
			Username: s.admin.Username,
			Password: s.admin.Password,
			Role:     user.RoleAdmin,
		})
		if err := s.identity.Save(ctx, users); err != nil {
			return fmt.Errorf("сохранение администратора: %w", err)
		}
		logger.Info("Service: Создан администратор по умолчанию", zap.String("username", s.admin.Username))
	}
	s.users = users

	if _, err := s.identity.MigrateLegacy(ctx, s.admin.Username); err != nil {
		return fmt.Errorf("миграция старых задач: %w", err)
	}

	logger.Info("Service: Пользователи загружены", zap.Int("count", len(users)))
	return nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			c := *u
			return &c, nil
		}
	}
	logger.Info("Service: Неудачная попытка входа", zap.String("username", username))
	return nil, NewBusinessError(CodeInvalidCredentials, "Неверное имя пользователя или код")
}

func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := s.core.now()
	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.Issue(sessionID, u.Username, now)
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}

	session := &repo.Session{ID: sessionID, Username: u.Username, CreatedAt: now, ExpiresAt: expiresAt}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("сохранение сессии: %w", err)
	}

	logger.Info("Service: Пользователь вошёл", zap.String("username", u.Username))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, SessionID: sessionID, User: u}, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}

// Resolve превращает токен в пользователя; удалённый пользователь считается вышедшим
func (s *UserService) Resolve(ctx context.Context, token string) (*user.User, string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", NewUnauthorized().WithErr(err)
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", NewUnauthorized()
		}
		return nil, "", fmt.Errorf("получение сессии: %w", err)
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	idx := s.indexByUsername(s.users, session.Username)
	if idx < 0 {
		return nil, "", NewUnauthorized()
	}
	c := *s.users[idx]
	return &c, session.ID, nil
}

func (s *UserService) ListUsers(ctx context.Context) []*user.User {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	out := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	return out
}

func (s *UserService) CreateUser(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	if s.indexByUsername(s.users, username) >= 0 {
		return nil, NewUsernameTaken(username)
	}

	created := user.New(username, password)
	users := append(append([]*user.User{}, s.users...), created)
	if err := s.identity.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("сохранение пользователей: %w", err)
	}
	s.users = users

	logger.Info("Service: Пользователь создан", zap.String("username", username))
	c := *created
	return &c, nil
}

// UpdateUser меняет имя и/или код. При переименовании раздел задач переносится
// до записи списка пользователей, а сессии перенаправляются на новое имя
func (s *UserService) UpdateUser(ctx context.Context, id, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	idx := s.indexByID(id)
	if idx < 0 {
		return nil, NewNotFound(ResourceUser, id)
	}
	existing := s.users[idx]
	oldUsername := existing.Username
	renamed := oldUsername != username

	if renamed && s.indexByUsername(s.users, username) >= 0 {
		return nil, NewUsernameTaken(username)
	}
	if renamed && oldUsername == s.admin.Username {
		return nil, NewBusinessError(CodeAdminProtected, "Администратора по умолчанию нельзя переименовать")
	}

	if renamed {
		if err := s.core.partitions.Move(ctx, oldUsername, username); err != nil {
			return nil, fmt.Errorf("перенос задач: %w", err)
		}
	}

	updated := *existing
	updated.Username = username
	updated.Password = password

	users := append([]*user.User{}, s.users...)
	users[idx] = &updated
	if err := s.identity.Save(ctx, users); err != nil {
		if renamed {
			if rbErr := s.core.partitions.Move(ctx, username, oldUsername); rbErr != nil {
				logger.Error("Service: Не удалось вернуть раздел задач", rbErr, zap.String("username", oldUsername))
			}
		}
		return nil, fmt.Errorf("сохранение пользователей: %w", err)
	}
	s.users = users

	if renamed {
		if err := s.sessions.Rename(ctx, oldUsername, username); err != nil {
			logger.Error("Service: Не удалось перенаправить сессии", err, zap.String("username", username))
		}
		logger.Info("Service: Пользователь переименован", zap.String("from", oldUsername), zap.String("to", username))
	}

	c := updated
	return &c, nil
}

// RemoveUser удаляет учётную запись и раздел задач
func (s *UserService) RemoveUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return NewBusinessError(CodeSelfRemoval, "Нельзя удалить самого себя")
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	idx := s.indexByID(id)
	if idx < 0 {
		return NewNotFound(ResourceUser, id)
	}
	target := s.users[idx]
	if target.Username == s.admin.Username {
		return NewBusinessError(CodeAdminProtected, "Администратора по умолчанию нельзя удалить")
	}

	users := make([]*user.User, 0, len(s.users)-1)
	users = append(users, s.users[:idx]...)
	users = append(users, s.users[idx+1:]...)
	if err := s.identity.Save(ctx, users); err != nil {
		return fmt.Errorf("сохранение пользователей: %w", err)
	}
	s.users = users

	if err := s.core.partitions.Drop(ctx, target.Username); err != nil {
		return fmt.Errorf("удаление задач: %w", err)
	}
	if err := s.sessions.DeleteByUsername(ctx, target.Username); err != nil {
		logger.Error("Service: Не удалось удалить сессии", err, zap.String("username", target.Username))
	}

	logger.Info("Service: Пользователь удалён", zap.String("username", target.Username))
	return nil
}

func (s *UserService) indexByUsername(users []*user.User, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

func (s *UserService) indexByID(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func validateCredentials(username, password string) error {
	if username == "" {
		return NewValidationError("username", "не может быть пустым")
	}
	if strings.ContainsAny(username, " \t\n") {
		return NewValidationError("username", "не может содержать пробелы")
	}
	if password == "" {
		return NewValidationError("password", "не может быть пустым")
	}
	return nil
}
