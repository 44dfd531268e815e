package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/user"

	"go.uber.org/zap"
)

const (
	userKey    contextKey = "user"
	sessionKey contextKey = "session_id"
)

// SessionResolver проверяет токен и возвращает пользователя сессии
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*user.User, string, error)
}

// Auth пропускает запрос дальше только с живой сессией. Удалённый пользователь
// считается вышедшим из системы
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r, "нужна авторизация")
				return
			}

			u, sessionID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				logger.Warn("Auth: Сессия не принята",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthorized(w, r, "сессия недействительна")
				return
			}

			setUsername(r.Context(), u.Username)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u, sessionID)))
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil || !u.IsAdmin() {
			logger.Warn("Auth: Доступ только для администратора",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path))

			writeJSONError(w, r, http.StatusForbidden, "FORBIDDEN", "доступ только для администратора")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey).(*user.User)
	return u
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

func WithUser(ctx context.Context, u *user.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, sessionID)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeJSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	SetErrorCode(r.Context(), code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      code,
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
