package handlers

import (
	"errors"
	"net/http"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/middleware"
	"aiPlanner/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	middleware.SetErrorCode(r.Context(), businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

// handleError отдаёт бизнес-ошибку с её статусом, всё остальное как 500 без подробностей
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, r, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeInvalidCredentials, service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeForbidden, service.CodeSelfRemoval, service.CodeAdminProtected:
		return http.StatusForbidden
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeUsernameTaken, service.CodeInvalidTransition, service.CodeNothingToUndo, service.CodeTaskBusy:
		return http.StatusConflict
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeAttachmentTooLarge:
		return http.StatusRequestEntityTooLarge
	case service.CodeEnrichmentFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
