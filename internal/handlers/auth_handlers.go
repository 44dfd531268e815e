package handlers

import (
	"net/http"
	"time"

	"aiPlanner/internal/handlers/dto"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	auth  AuthService
	tasks TaskService
}

func NewAuthHandler(auth AuthService, tasks TaskService) *AuthHandler {
	return &AuthHandler{auth: auth, tasks: tasks}
}

// Login отдаёт токен и сразу напоминания по срокам
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := h.auth.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	buckets, err := h.tasks.Reminders(r.Context(), result.User.Username)
	if err != nil {
		handleError(w, r, err, "login_reminders")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("username", result.User.Username),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.FromUser(result.User),
		Reminders: dto.FromBuckets(buckets, h.tasks),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := h.auth.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		handleError(w, r, err, "logout")
		return
	}
	responseWithBody(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromUser(middleware.UserFromContext(r.Context())))
}

func (h *AuthHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	u := middleware.UserFromContext(r.Context())
	buckets, err := h.tasks.Reminders(r.Context(), u.Username)
	if err != nil {
		handleError(w, r, err, "reminders")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromBuckets(buckets, h.tasks))
}
