package handlers

import (
	"net/http"
	"time"

	"aiPlanner/internal/handlers/dto"
	"aiPlanner/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AIHandler вызывает модель; ответы медленные, поэтому время пишется в лог всегда
type AIHandler struct {
	enrich EnrichService
	status dto.TaskStatus
}

func NewAIHandler(enrich EnrichService, status dto.TaskStatus) *AIHandler {
	return &AIHandler{enrich: enrich, status: status}
}

func (h *AIHandler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ImportRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.enrich.ImportText(r.Context(), username(r), request.Text)
	if err != nil {
		handleError(w, r, err, "ai_import")
		return
	}

	logger.Info("HTTP_OUT: Задачи импортированы",
		zap.Int("count", len(created)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTaskList(created, h.status))
}

func (h *AIHandler) MeetingNotes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.MeetingNotesRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.enrich.MeetingNotes(r.Context(), username(r), request.Title, request.Notes)
	if err != nil {
		handleError(w, r, err, "ai_meeting_notes")
		return
	}

	logger.Info("HTTP_OUT: Задачи из протокола встречи",
		zap.Int("count", len(created)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTaskList(created, h.status))
}

func (h *AIHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	updated, err := h.enrich.Enhance(r.Context(), username(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "ai_enhance")
		return
	}

	logger.Info("HTTP_OUT: Задача дополнена",
		zap.String("task_id", updated.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.status))
}

func (h *AIHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	updated, err := h.enrich.Schedule(r.Context(), username(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "ai_schedule")
		return
	}

	logger.Info("HTTP_OUT: Срок предложен",
		zap.String("task_id", updated.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.status))
}

func (h *AIHandler) Undo(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	restored, err := h.enrich.Undo(r.Context(), username(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "ai_undo")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(restored, h.status))
}
