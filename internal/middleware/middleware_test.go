package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/middleware"
	"aiPlanner/internal/models/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, token string) (*user.User, string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*user.User), args.String(1), args.Error(2)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc", seen)
}

// TestRateLimit тестирует отказ после исчерпания лимита
func TestRateLimit(t *testing.T) {
	h := middleware.NewRateLimiter(2).Handler(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// другой клиент считается отдельно
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRateLimit_PerUser тестирует, что после входа лимит считается на пользователя, а не на ip
func TestRateLimit_PerUser(t *testing.T) {
	h := middleware.NewRateLimiter(1).Handler(okHandler)

	send := func(u *user.User, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.RemoteAddr = addr
		if u != nil {
			req = req.WithContext(middleware.WithUser(req.Context(), u, "sid"))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	anna := &user.User{ID: "u1", Username: "anna"}
	bob := &user.User{ID: "u2", Username: "bob"}

	assert.Equal(t, http.StatusOK, send(anna, "10.0.0.1:1").Code)
	// тот же ip, но другой пользователь
	assert.Equal(t, http.StatusOK, send(bob, "10.0.0.1:2").Code)
	// тот же пользователь с другого ip
	w := send(anna, "10.0.0.9:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	// анонимный запрос с того же ip идёт в свой счётчик
	assert.Equal(t, http.StatusOK, send(nil, "10.0.0.1:3").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := middleware.NewRateLimiter(0).Handler(okHandler)
	for range 5 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

// TestLogging тестирует, что строка ответа содержит пользователя и код ошибки
func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })

	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "good").Return(&user.User{ID: "u1", Username: "anna"}, "sid-1", nil)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.SetErrorCode(r.Context(), "NOT_FOUND")
		w.WriteHeader(http.StatusNotFound)
	})
	h := middleware.RequestID(middleware.Logging(middleware.Auth(resolver)(inner)))

	req := httptest.NewRequest(http.MethodGet, "/tasks/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	out := logs.FilterMessage("HTTP_OUT: Завершение запроса").All()
	require.Len(t, out, 1)
	assert.Equal(t, zap.WarnLevel, out[0].Level)

	fields := out[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "anna", fields["username"])
	assert.Equal(t, "NOT_FOUND", fields["error_code"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}

// TestAuth тестирует разбор Bearer-токена и проверку сессии
func TestAuth(t *testing.T) {
	anna := &user.User{ID: "u1", Username: "anna", Role: user.RoleUser}

	tests := []struct {
		name           string
		header         string
		setupMock      func(m *MockResolver)
		expectedStatus int
	}{
		{
			name:   "success - valid token",
			header: "Bearer good",
			setupMock: func(m *MockResolver) {
				m.On("Resolve", mock.Anything, "good").Return(anna, "sid-1", nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - no header",
			header:         "",
			setupMock:      func(m *MockResolver) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "error - wrong scheme",
			header:         "Basic abc",
			setupMock:      func(m *MockResolver) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "error - session gone",
			header: "Bearer stale",
			setupMock: func(m *MockResolver) {
				m.On("Resolve", mock.Anything, "stale").Return(nil, "", errors.New("expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockResolver)
			tt.setupMock(resolver)

			var gotUser *user.User
			var gotSession string
			h := middleware.Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = middleware.UserFromContext(r.Context())
				gotSession = middleware.SessionIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				require.NotNil(t, gotUser)
				assert.Equal(t, "anna", gotUser.Username)
				assert.Equal(t, "sid-1", gotSession)
			} else {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
			resolver.AssertExpectations(t)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	h := middleware.AdminOnly(okHandler)

	tests := []struct {
		name           string
		user           *user.User
		expectedStatus int
	}{
		{name: "success - admin", user: &user.User{Username: "MG", Role: user.RoleAdmin}, expectedStatus: http.StatusOK},
		{name: "error - regular user", user: &user.User{Username: "anna", Role: user.RoleUser}, expectedStatus: http.StatusForbidden},
		{name: "error - anonymous", user: nil, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), tt.user, "sid"))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
