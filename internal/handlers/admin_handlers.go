package handlers

import (
	"net/http"

	"aiPlanner/internal/handlers/dto"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	users UserAdminService
}

func NewAdminHandler(users UserAdminService) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromUserList(h.users.ListUsers(r.Context())))
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.UserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.users.CreateUser(r.Context(), request.Username, request.Password)
	if err != nil {
		handleError(w, r, err, "create_user")
		return
	}

	logger.Info("HTTP_OUT: Пользователь создан", zap.String("user_id", created.ID))
	responseWithBody(w, http.StatusCreated, dto.FromUser(created))
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.UserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), request.Username, request.Password)
	if err != nil {
		handleError(w, r, err, "update_user")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(updated))
}

func (h *AdminHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actor := middleware.UserFromContext(r.Context())
	if err := h.users.RemoveUser(r.Context(), actor.ID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "remove_user")
		return
	}
	responseWithBody(w, http.StatusNoContent, nil)
}
