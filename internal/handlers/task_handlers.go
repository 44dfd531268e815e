package handlers

import (
	"net/http"
	"strings"
	"time"

	"aiPlanner/internal/handlers/dto"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/middleware"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/timeline"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks TaskService
	loc   *time.Location
}

func NewTaskHandler(tasks TaskService, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TaskHandler{tasks: tasks, loc: loc}
}

func username(r *http.Request) string {
	return middleware.UserFromContext(r.Context()).Username
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// List отдаёт видимый список: GET /tasks?mode=&q=&type=&tags=a,b&date=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query := r.URL.Query()
	mode, err := timeline.ParseMode(query.Get("mode"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "mode"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := timeline.Filter{
		Search: query.Get("q"),
		Type:   query.Get("type"),
		Tags:   splitList(query.Get("tags")),
		Date:   query.Get("date"),
		Mode:   mode,
	}

	view, err := h.tasks.View(r.Context(), username(r), filter)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("focus", len(view.Focus)),
		zap.Int("regular", len(view.Regular)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromView(view, h.tasks))
}

func (h *TaskHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tasks.AvailableTags(r.Context(), username(r))
	if err != nil {
		handleError(w, r, err, "tags")
		return
	}
	responseWithBody(w, http.StatusOK, tags)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tasks.Stats(r.Context(), username(r), splitList(r.URL.Query().Get("tags")))
	if err != nil {
		handleError(w, r, err, "stats")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromStats(stats))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Get(r.Context(), username(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(t, h.tasks))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	in, err := request.ToInput(h.loc)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	created, err := h.tasks.Create(r.Context(), username(r), in)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, h.tasks))
}

func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	in, err := request.ToInput(h.loc)
	if err != nil {
		handleError(w, r, err, "replace_task")
		return
	}

	updated, err := h.tasks.Replace(r.Context(), username(r), chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err, "replace_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

// Transition обслуживает POST /tasks/{id}/{complete|reopen|trash|restore}
func (h *TaskHandler) Transition(tr task.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("transition", string(tr)))

		updated, err := h.tasks.Transition(r.Context(), username(r), chi.URLParam(r, "id"), tr)
		if err != nil {
			handleError(w, r, err, string(tr))
			return
		}
		responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
	}
}

// Purge удаляет задачу навсегда, только из корзины
func (h *TaskHandler) Purge(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if _, err := h.tasks.Transition(r.Context(), username(r), chi.URLParam(r, "id"), task.TransitionPurge); err != nil {
		handleError(w, r, err, "purge")
		return
	}
	responseWithBody(w, http.StatusNoContent, nil)
}

func (h *TaskHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	removed, err := h.tasks.EmptyTrash(r.Context(), username(r))
	if err != nil {
		handleError(w, r, err, "empty_trash")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("removed", removed))
}

func (h *TaskHandler) ToggleFocus(w http.ResponseWriter, r *http.Request) {
	updated, err := h.tasks.ToggleFocus(r.Context(), username(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "toggle_focus")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	var request dto.SubtaskTextRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.tasks.AddSubtask(r.Context(), username(r), chi.URLParam(r, "id"), request.Text)
	if err != nil {
		handleError(w, r, err, "add_subtask")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	updated, err := h.tasks.ToggleSubtask(r.Context(), username(r), chi.URLParam(r, "id"), chi.URLParam(r, "subtaskID"))
	if err != nil {
		handleError(w, r, err, "toggle_subtask")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

func (h *TaskHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.AttachmentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.tasks.AddAttachment(r.Context(), username(r), chi.URLParam(r, "id"), request.ToAttachment())
	if err != nil {
		handleError(w, r, err, "add_attachment")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

func (h *TaskHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	updated, err := h.tasks.RemoveAttachment(r.Context(), username(r), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		handleError(w, r, err, "remove_attachment")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, h.tasks))
}

